package file

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/protocol"
)

// TaskCreator stores tasks as entity documents under the task type.
type TaskCreator struct {
	entities *EntityStore
}

func NewTaskCreator(entities *EntityStore) *TaskCreator {
	return &TaskCreator{entities: entities}
}

func (t *TaskCreator) CreateTask(ctx context.Context, task protocol.NewTask) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	entity := models.Entity{
		"id":          id,
		"title":       task.Title,
		"description": task.Description,
		"assignee_id": task.AssigneeID,
		"entity_type": task.EntityType,
		"entity_id":   task.EntityID,
		"status":      "open",
		"created_at":  now,
		"updated_at":  now,
	}

	if task.DueAt != nil {
		entity["due_at"] = task.DueAt.UTC().Format(time.RFC3339)
	}

	if err := t.entities.Save(ctx, task.TenantID, "task", entity); err != nil {
		return "", err
	}

	return id, nil
}

var _ protocol.TaskCreator = (*TaskCreator)(nil)
