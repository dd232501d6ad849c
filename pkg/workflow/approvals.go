package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumahq/automation/pkg/models"
)

// ErrNotPendingApproval indicates an approve or reject call targeted an
// execution that already left the pending_approval state.
var ErrNotPendingApproval = errors.New("execution is not pending approval")

// PendingApprovals lists executions waiting for a decision.
func (e *Engine) PendingApprovals(ctx context.Context) ([]*models.WorkflowExecution, error) {
	return e.persist.Executions().PendingApprovals(ctx, e.tenantID)
}

// ApproveExecution runs a gated execution's actions. The entity is
// re-fetched so the actions see current state, not the state at trigger
// time; the limiter is acquired here, so an execution approved after the
// cap was reached elsewhere ends up skipped.
func (e *Engine) ApproveExecution(ctx context.Context, executionID, approvedBy string) (*models.WorkflowExecution, error) {
	execution, err := e.persist.Executions().ByID(ctx, e.tenantID, executionID)
	if err != nil {
		return nil, err
	}

	if execution.Result != models.ResultPendingApproval {
		return nil, fmt.Errorf("execution %s: %w", executionID, ErrNotPendingApproval)
	}

	rule := e.ruleByID(execution.RuleID)
	if rule == nil {
		return nil, fmt.Errorf("rule %s no longer exists", execution.RuleID)
	}

	now := time.Now().UTC()
	execution.ApprovedBy = approvedBy
	execution.ApprovedAt = &now

	entity, err := e.persist.Entities().Fetch(ctx, e.tenantID, execution.EntityType, execution.EntityID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", execution.EntityType, execution.EntityID, err)
	}

	// Read before Acquire so remindersSent excludes the slot this firing
	// is about to take, matching the unapproved path.
	state, _ := e.persist.EntityStates().Get(ctx, e.tenantID, rule.ID, execution.EntityType, execution.EntityID)

	acquired, err := e.persist.EntityStates().Acquire(ctx, e.tenantID, rule.ID,
		execution.EntityType, execution.EntityID, rule.CooldownHours, rule.MaxExecutions, now)
	if err != nil {
		return nil, fmt.Errorf("acquire execution slot: %w", err)
	}

	if !acquired {
		execution.Result = models.ResultSkipped
		completedAt := time.Now().UTC()
		execution.CompletedAt = &completedAt

		return execution, e.persist.Executions().Save(ctx, execution)
	}

	fctx := e.fieldContext(firing{entityType: execution.EntityType, entity: entity}, state, now)

	execution.ActionsTaken = e.runActions(ctx, rule, execution, fctx)
	execution.Result = models.ClassifyActionResults(execution.ActionsTaken)

	completedAt := time.Now().UTC()
	execution.CompletedAt = &completedAt

	if err := e.persist.Executions().Save(ctx, execution); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Execution approved",
		"execution_id", execution.ID,
		"approved_by", approvedBy,
		"result", execution.Result)

	return execution, nil
}

// RejectExecution records the decision and closes the execution as
// skipped without running any action.
func (e *Engine) RejectExecution(ctx context.Context, executionID, rejectedBy, reason string) (*models.WorkflowExecution, error) {
	execution, err := e.persist.Executions().ByID(ctx, e.tenantID, executionID)
	if err != nil {
		return nil, err
	}

	if execution.Result != models.ResultPendingApproval {
		return nil, fmt.Errorf("execution %s: %w", executionID, ErrNotPendingApproval)
	}

	now := time.Now().UTC()
	execution.RejectedBy = rejectedBy
	execution.RejectedAt = &now
	execution.RejectionReason = reason
	execution.Result = models.ResultSkipped
	execution.CompletedAt = &now

	if err := e.persist.Executions().Save(ctx, execution); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Execution rejected",
		"execution_id", execution.ID,
		"rejected_by", rejectedBy,
		"reason", reason)

	return execution, nil
}
