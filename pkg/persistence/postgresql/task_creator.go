package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumahq/automation/pkg/protocol"
)

// TaskCreator inserts rows into the host application's tasks table.
type TaskCreator struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTaskCreator(db *sql.DB, logger *slog.Logger) *TaskCreator {
	return &TaskCreator{
		db:     db,
		logger: logger.With("module", "postgresql.tasks"),
	}
}

func (t *TaskCreator) CreateTask(ctx context.Context, task protocol.NewTask) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate task id: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO tasks (id, tenant_id, title, description, assignee_id, due_at,
			entity_type, entity_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'open', $9, $9)`

	_, err = t.db.ExecContext(ctx, query,
		id.String(),
		task.TenantID,
		task.Title,
		nullableString(task.Description),
		nullableString(task.AssigneeID),
		task.DueAt,
		nullableString(task.EntityType),
		nullableString(task.EntityID),
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert task: %w", err)
	}

	t.logger.InfoContext(ctx, "Created task",
		"task_id", id.String(),
		"tenant_id", task.TenantID,
		"title", task.Title)

	return id.String(), nil
}

var _ protocol.TaskCreator = (*TaskCreator)(nil)
