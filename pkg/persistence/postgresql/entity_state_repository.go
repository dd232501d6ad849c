package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
)

// EntityStateRepository tracks per-(rule, entity) execution counters.
type EntityStateRepository struct {
	db *sql.DB
}

func NewEntityStateRepository(db *sql.DB) *EntityStateRepository {
	return &EntityStateRepository{db: db}
}

func (r *EntityStateRepository) Get(ctx context.Context, tenantID, ruleID, entityType, entityID string) (*models.EntityWorkflowState, error) {
	query := `
		SELECT tenant_id, rule_id, entity_type, entity_id, execution_count, last_executed_at
		FROM entity_workflow_states
		WHERE tenant_id = $1 AND rule_id = $2 AND entity_type = $3 AND entity_id = $4
	`

	var state models.EntityWorkflowState

	err := r.db.QueryRowContext(ctx, query, tenantID, ruleID, entityType, entityID).Scan(
		&state.TenantID,
		&state.RuleID,
		&state.EntityType,
		&state.EntityID,
		&state.ExecutionCount,
		&state.LastExecutedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrStateNotFound
		}

		return nil, fmt.Errorf("failed to query entity state: %w", err)
	}

	return &state, nil
}

// Acquire increments the counter in a single conditional upsert so two
// concurrent firings cannot both pass the cooldown or max-execution
// guard. Zero affected rows means the guard blocked this caller.
func (r *EntityStateRepository) Acquire(ctx context.Context, tenantID, ruleID, entityType, entityID string,
	cooldownHours, maxExecutions *int, now time.Time,
) (bool, error) {
	query := `
		INSERT INTO entity_workflow_states
			(tenant_id, rule_id, entity_type, entity_id, execution_count, last_executed_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (tenant_id, rule_id, entity_type, entity_id) DO UPDATE SET
			execution_count = entity_workflow_states.execution_count + 1,
			last_executed_at = EXCLUDED.last_executed_at
		WHERE ($6::int IS NULL
				OR entity_workflow_states.last_executed_at IS NULL
				OR entity_workflow_states.last_executed_at <= $5::timestamptz - make_interval(hours => $6))
		  AND ($7::int IS NULL
				OR entity_workflow_states.execution_count < $7)
	`

	result, err := r.db.ExecContext(ctx, query,
		tenantID, ruleID, entityType, entityID, now,
		nullableInt(cooldownHours), nullableInt(maxExecutions),
	)
	if err != nil {
		return false, fmt.Errorf("failed to acquire execution slot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
