package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumahq/automation/pkg/conditions"
	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
)

// ErrNotPending indicates a cancel call targeted a scheduled action that
// already left the pending state.
var ErrNotPending = errors.New("scheduled action is not pending")

// RunScheduledAction processes one due deferred action: re-evaluates
// its cancellation conditions against the entity's current state, then
// runs the nested action. The row always leaves pending.
func (e *Engine) RunScheduledAction(ctx context.Context, scheduled *models.ScheduledAction) error {
	now := time.Now().UTC()
	scheduled.ProcessedAt = &now

	entity, err := e.persist.Entities().Fetch(ctx, e.tenantID, scheduled.EntityType, scheduled.EntityID)
	if err != nil {
		if errors.Is(err, persistence.ErrEntityNotFound) {
			scheduled.Status = models.ScheduledCancelled
			scheduled.CancelReason = "entity no longer exists"

			return e.persist.ScheduledActions().Save(ctx, scheduled)
		}

		return fmt.Errorf("fetch %s %s: %w", scheduled.EntityType, scheduled.EntityID, err)
	}

	fctx := fields.Context{
		Entity:   entity,
		Computed: fields.Compute(entity, now),
	}

	// Any single matching condition cancels.
	for _, cond := range scheduled.CancelIf {
		evaluation := conditions.Evaluate([]models.Condition{cond}, fctx)
		if evaluation.Passed {
			scheduled.Status = models.ScheduledCancelled
			scheduled.CancelReason = fmt.Sprintf("condition matched: %s %s", cond.Field, cond.Operator)

			e.logger.InfoContext(ctx, "Scheduled action cancelled by condition",
				"scheduled_action_id", scheduled.ID,
				"field", cond.Field)

			return e.persist.ScheduledActions().Save(ctx, scheduled)
		}
	}

	ectx := protocol.ExecContext{
		TenantID:   e.tenantID,
		RuleID:     scheduled.RuleID,
		EntityType: scheduled.EntityType,
		Entity:     entity,
		Fields:     fctx,
	}

	result := e.runAction(ctx, scheduled.Action, ectx)
	if result.Success {
		scheduled.Status = models.ScheduledExecuted
	} else {
		scheduled.Status = models.ScheduledFailed
		scheduled.Error = result.Error
	}

	e.logger.InfoContext(ctx, "Processed scheduled action",
		"scheduled_action_id", scheduled.ID,
		"action_type", scheduled.Action.Type,
		"status", scheduled.Status)

	return e.persist.ScheduledActions().Save(ctx, scheduled)
}

// CancelScheduledAction cancels a pending deferred action by id.
func (e *Engine) CancelScheduledAction(ctx context.Context, id, reason string) (*models.ScheduledAction, error) {
	scheduled, err := e.persist.ScheduledActions().ByID(ctx, e.tenantID, id)
	if err != nil {
		return nil, err
	}

	if scheduled.Status != models.ScheduledPending {
		return nil, fmt.Errorf("scheduled action %s: %w", id, ErrNotPending)
	}

	now := time.Now().UTC()
	scheduled.Status = models.ScheduledCancelled
	scheduled.CancelReason = reason
	scheduled.ProcessedAt = &now

	if err := e.persist.ScheduledActions().Save(ctx, scheduled); err != nil {
		return nil, err
	}

	return scheduled, nil
}

const defaultScheduledBatch = 100

// ScheduledProcessor polls for due deferred actions across tenants and
// routes each to its tenant's engine.
type ScheduledProcessor struct {
	repo      persistence.ScheduledActionRepository
	manager   *Manager
	logger    *slog.Logger
	batchSize int
}

func NewScheduledProcessor(repo persistence.ScheduledActionRepository, manager *Manager, logger *slog.Logger) *ScheduledProcessor {
	return &ScheduledProcessor{
		repo:      repo,
		manager:   manager,
		logger:    logger.With("module", "scheduled_processor"),
		batchSize: defaultScheduledBatch,
	}
}

// Run processes one batch of due actions. Per-action failures are
// logged and do not stop the batch.
func (p *ScheduledProcessor) Run(ctx context.Context, now time.Time) (int, error) {
	due, err := p.repo.Due(ctx, now, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list due scheduled actions: %w", err)
	}

	processed := 0

	for _, scheduled := range due {
		engine, err := p.manager.Engine(ctx, scheduled.TenantID)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to resolve tenant engine",
				"tenant_id", scheduled.TenantID,
				"error", err)

			continue
		}

		if err := engine.RunScheduledAction(ctx, scheduled); err != nil {
			p.logger.ErrorContext(ctx, "Failed to process scheduled action",
				"scheduled_action_id", scheduled.ID,
				"error", err)

			continue
		}

		processed++
	}

	return processed, nil
}
