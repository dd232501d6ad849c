package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
)

const executionColumns = `
	id
  , tenant_id
  , rule_id
  , rule_name
  , entity_type
  , entity_id
  , trigger_type
  , trigger_snapshot
  , condition_results
  , conditions_passed
  , actions_taken
  , result
  , approved_by
  , approved_at
  , rejected_by
  , rejected_at
  , rejection_reason
  , started_at
  , completed_at
`

// ExecutionRepository stores firing audit records.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Save upserts an execution record.
func (r *ExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	snapshotJSON, err := json.Marshal(execution.TriggerSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger snapshot: %w", err)
	}

	conditionResultsJSON, err := json.Marshal(execution.ConditionResults)
	if err != nil {
		return fmt.Errorf("failed to marshal condition results: %w", err)
	}

	actionsTakenJSON, err := json.Marshal(execution.ActionsTaken)
	if err != nil {
		return fmt.Errorf("failed to marshal action results: %w", err)
	}

	query := `
		INSERT INTO workflow_executions (id, tenant_id, rule_id, rule_name, entity_type, entity_id,
			trigger_type, trigger_snapshot, condition_results, conditions_passed, actions_taken,
			result, approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
			started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			condition_results = EXCLUDED.condition_results,
			conditions_passed = EXCLUDED.conditions_passed,
			actions_taken = EXCLUDED.actions_taken,
			result = EXCLUDED.result,
			approved_by = EXCLUDED.approved_by,
			approved_at = EXCLUDED.approved_at,
			rejected_by = EXCLUDED.rejected_by,
			rejected_at = EXCLUDED.rejected_at,
			rejection_reason = EXCLUDED.rejection_reason,
			completed_at = EXCLUDED.completed_at
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.TenantID,
		execution.RuleID,
		execution.RuleName,
		execution.EntityType,
		execution.EntityID,
		execution.TriggerType,
		snapshotJSON,
		conditionResultsJSON,
		execution.ConditionsPassed,
		actionsTakenJSON,
		execution.Result,
		execution.ApprovedBy,
		execution.ApprovedAt,
		execution.RejectedBy,
		execution.RejectedAt,
		execution.RejectionReason,
		execution.StartedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	return nil
}

// ByID returns one tenant's execution record.
func (r *ExecutionRepository) ByID(ctx context.Context, tenantID, id string) (*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE tenant_id = $1 AND id = $2`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// PendingApprovals returns executions waiting for a decision, oldest
// first.
func (r *ExecutionRepository) PendingApprovals(ctx context.Context, tenantID string) ([]*models.WorkflowExecution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM workflow_executions
		WHERE tenant_id = $1 AND result = $2
		ORDER BY started_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, models.ResultPendingApproval)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending approvals: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func scanExecution(scanner interface{ Scan(dest ...any) error }) (*models.WorkflowExecution, error) {
	var (
		execution            models.WorkflowExecution
		snapshotJSON         []byte
		conditionResultsJSON []byte
		actionsTakenJSON     []byte
	)

	err := scanner.Scan(
		&execution.ID,
		&execution.TenantID,
		&execution.RuleID,
		&execution.RuleName,
		&execution.EntityType,
		&execution.EntityID,
		&execution.TriggerType,
		&snapshotJSON,
		&conditionResultsJSON,
		&execution.ConditionsPassed,
		&actionsTakenJSON,
		&execution.Result,
		&execution.ApprovedBy,
		&execution.ApprovedAt,
		&execution.RejectedBy,
		&execution.RejectedAt,
		&execution.RejectionReason,
		&execution.StartedAt,
		&execution.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if snapshotJSON != nil {
		if err := json.Unmarshal(snapshotJSON, &execution.TriggerSnapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger snapshot: %w", err)
		}
	}

	if conditionResultsJSON != nil {
		if err := json.Unmarshal(conditionResultsJSON, &execution.ConditionResults); err != nil {
			return nil, fmt.Errorf("failed to unmarshal condition results: %w", err)
		}
	}

	if actionsTakenJSON != nil {
		if err := json.Unmarshal(actionsTakenJSON, &execution.ActionsTaken); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action results: %w", err)
		}
	}

	return &execution, nil
}
