package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
)

const scheduledActionColumns = `
	id
  , tenant_id
  , rule_id
  , entity_type
  , entity_id
  , action
  , fire_at
  , cancel_if
  , status
  , cancel_reason
  , error
  , created_at
  , processed_at
`

// ScheduledActionRepository stores deferred actions.
type ScheduledActionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewScheduledActionRepository(db *sql.DB, logger *slog.Logger) *ScheduledActionRepository {
	return &ScheduledActionRepository{db: db, logger: logger}
}

// Save upserts a scheduled action.
func (r *ScheduledActionRepository) Save(ctx context.Context, action *models.ScheduledAction) error {
	actionJSON, err := json.Marshal(action.Action)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}

	cancelIfJSON, err := json.Marshal(action.CancelIf)
	if err != nil {
		return fmt.Errorf("failed to marshal cancel conditions: %w", err)
	}

	query := `
		INSERT INTO scheduled_actions (id, tenant_id, rule_id, entity_type, entity_id,
			action, fire_at, cancel_if, status, cancel_reason, error, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			cancel_reason = EXCLUDED.cancel_reason,
			error = EXCLUDED.error,
			processed_at = EXCLUDED.processed_at
	`

	_, err = r.db.ExecContext(ctx, query,
		action.ID,
		action.TenantID,
		nullableString(action.RuleID),
		action.EntityType,
		action.EntityID,
		actionJSON,
		action.FireAt,
		cancelIfJSON,
		action.Status,
		action.CancelReason,
		action.Error,
		action.CreatedAt,
		action.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scheduled action: %w", err)
	}

	return nil
}

// ByID returns one tenant's scheduled action.
func (r *ScheduledActionRepository) ByID(ctx context.Context, tenantID, id string) (*models.ScheduledAction, error) {
	query := `SELECT ` + scheduledActionColumns + ` FROM scheduled_actions WHERE tenant_id = $1 AND id = $2`

	action, err := scanScheduledAction(r.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrScheduledActionNotFound
		}

		return nil, fmt.Errorf("failed to scan scheduled action: %w", err)
	}

	return action, nil
}

// Due returns pending actions whose fire time has passed, oldest first.
func (r *ScheduledActionRepository) Due(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledAction, error) {
	query := `
		SELECT ` + scheduledActionColumns + `
		FROM scheduled_actions
		WHERE status = $1 AND fire_at <= $2
		ORDER BY fire_at ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, models.ScheduledPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due scheduled actions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	actions := make([]*models.ScheduledAction, 0)

	for rows.Next() {
		action, err := scanScheduledAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled action: %w", err)
		}

		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduled actions: %w", err)
	}

	return actions, nil
}

func scanScheduledAction(scanner interface{ Scan(dest ...any) error }) (*models.ScheduledAction, error) {
	var (
		action       models.ScheduledAction
		ruleID       sql.NullString
		actionJSON   []byte
		cancelIfJSON []byte
	)

	err := scanner.Scan(
		&action.ID,
		&action.TenantID,
		&ruleID,
		&action.EntityType,
		&action.EntityID,
		&actionJSON,
		&action.FireAt,
		&cancelIfJSON,
		&action.Status,
		&action.CancelReason,
		&action.Error,
		&action.CreatedAt,
		&action.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}

	action.RuleID = ruleID.String

	if err := json.Unmarshal(actionJSON, &action.Action); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action: %w", err)
	}

	if err := json.Unmarshal(cancelIfJSON, &action.CancelIf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cancel conditions: %w", err)
	}

	return &action, nil
}

func nullableString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: v, Valid: true}
}
