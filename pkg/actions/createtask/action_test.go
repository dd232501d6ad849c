package createtask

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/protocol"
)

type captureCreator struct {
	created protocol.NewTask
}

func (c *captureCreator) CreateTask(_ context.Context, task protocol.NewTask) (string, error) {
	c.created = task

	return "task-42", nil
}

func execContext(entity models.Entity) protocol.ExecContext {
	return protocol.ExecContext{
		TenantID:   "tenant-1",
		RuleID:     "rule-1",
		EntityType: "order",
		Entity:     entity,
		Fields:     fields.Context{Entity: entity},
	}
}

func TestNewActionRequiresTitle(t *testing.T) {
	_, err := NewAction(map[string]any{"assignTo": "owner"}, &captureCreator{})
	assert.Error(t, err)
}

func TestExecuteCreatesTask(t *testing.T) {
	creator := &captureCreator{}

	action, err := NewAction(map[string]any{
		"title":     "Review order for {name}",
		"assignTo":  "owner",
		"dueInDays": float64(3),
	}, creator)
	require.NoError(t, err)

	entity := models.Entity{"id": "order-7", "name": "Jane Doe", "ownerId": "user-5"}

	result, err := action.Execute(context.Background(), execContext(entity), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "Review order for Jane Doe", creator.created.Title)
	assert.Equal(t, "user-5", creator.created.AssigneeID)
	assert.Equal(t, "order-7", creator.created.EntityID)
	require.NotNil(t, creator.created.DueAt)
	assert.WithinDuration(t, time.Now().UTC().Add(72*time.Hour), *creator.created.DueAt, 5*time.Second)

	assert.Equal(t, "task-42", result["task_id"])
}

func TestExecuteLiteralAssignee(t *testing.T) {
	creator := &captureCreator{}

	action, err := NewAction(map[string]any{
		"title":    "Manual check",
		"assignTo": "user-99",
	}, creator)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), execContext(models.Entity{"id": "order-7"}), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "user-99", creator.created.AssigneeID)
	assert.Nil(t, creator.created.DueAt)
}

func TestExecuteFailsWithoutOwner(t *testing.T) {
	action, err := NewAction(map[string]any{
		"title":    "Orphan",
		"assignTo": "coordinator",
	}, &captureCreator{})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), execContext(models.Entity{"id": "order-7"}), slog.Default())
	assert.Error(t, err)
}
