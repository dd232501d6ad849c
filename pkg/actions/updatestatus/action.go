// Package updatestatus implements the update_status action. A failure
// here halts the remaining actions of the rule, since later actions
// usually assume the transition happened.
package updatestatus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
)

type Action struct {
	NewStatus string

	entities persistence.EntityStore
}

func NewAction(config map[string]any, entities persistence.EntityStore) (*Action, error) {
	newStatus, _ := config["newStatus"].(string)
	if newStatus == "" {
		return nil, fmt.Errorf("update_status requires 'newStatus'")
	}

	return &Action{NewStatus: newStatus, entities: entities}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "update_status")

	previous := ectx.Entity.String("status")

	err := a.entities.UpdateStatus(ctx, ectx.TenantID, ectx.EntityType, ectx.Entity.ID(), a.NewStatus)
	if err != nil {
		return nil, fmt.Errorf("update %s status: %w", ectx.EntityType, err)
	}

	logger.InfoContext(ctx, "Updated entity status",
		"entity_id", ectx.Entity.ID(),
		"from", previous,
		"to", a.NewStatus)

	return map[string]any{
		"previous_status": previous,
		"new_status":      a.NewStatus,
	}, nil
}
