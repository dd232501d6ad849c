// Package schedulefollowup implements the schedule_followup action: it
// persists a deferred action that the scheduled-action processor fires
// later, unless the cancellation conditions hold by then.
package schedulefollowup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
)

type Action struct {
	DelayHours int
	DelayDays  int
	Followup   models.ActionItem
	CancelIf   []models.Condition

	scheduled persistence.ScheduledActionRepository
}

func NewAction(config map[string]any, scheduled persistence.ScheduledActionRepository) (*Action, error) {
	nested, ok := config["action"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schedule_followup requires a nested 'action'")
	}

	nestedType, _ := nested["type"].(string)
	if nestedType == "" {
		return nil, fmt.Errorf("schedule_followup nested action requires 'type'")
	}

	if nestedType == string(models.ActionScheduleFollowup) {
		return nil, fmt.Errorf("schedule_followup cannot nest another schedule_followup")
	}

	nestedConfig, _ := nested["config"].(map[string]any)

	action := &Action{
		DelayHours: intConfig(config, "delayHours"),
		DelayDays:  intConfig(config, "delayDays"),
		Followup: models.ActionItem{
			Type:   models.ActionType(nestedType),
			Config: nestedConfig,
		},
		CancelIf:  parseConditions(config["cancelIf"]),
		scheduled: scheduled,
	}

	return action, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "schedule_followup")

	now := time.Now().UTC()
	fireAt := now.
		Add(time.Duration(a.DelayHours) * time.Hour).
		Add(time.Duration(a.DelayDays) * 24 * time.Hour)

	scheduled := &models.ScheduledAction{
		ID:         uuid.NewString(),
		TenantID:   ectx.TenantID,
		RuleID:     ectx.RuleID,
		EntityType: ectx.EntityType,
		EntityID:   ectx.Entity.ID(),
		Action:     a.Followup,
		FireAt:     fireAt,
		CancelIf:   a.CancelIf,
		Status:     models.ScheduledPending,
		CreatedAt:  now,
	}

	if err := a.scheduled.Save(ctx, scheduled); err != nil {
		return nil, fmt.Errorf("persist scheduled action: %w", err)
	}

	logger.InfoContext(ctx, "Scheduled followup action",
		"scheduled_action_id", scheduled.ID,
		"followup_type", a.Followup.Type,
		"fire_at", fireAt)

	return map[string]any{
		"scheduled_action_id": scheduled.ID,
		"fire_at":             fireAt.Format(time.RFC3339),
	}, nil
}

func intConfig(config map[string]any, key string) int {
	switch v := config[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}

	return 0
}

func parseConditions(raw any) []models.Condition {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	conditions := make([]models.Condition, 0, len(list))

	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		field, _ := m["field"].(string)
		operator, _ := m["operator"].(string)

		conditions = append(conditions, models.Condition{
			Field:    field,
			Operator: models.Operator(operator),
			Value:    m["value"],
		})
	}

	return conditions
}
