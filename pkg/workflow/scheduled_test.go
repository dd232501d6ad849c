package workflow_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/workflow"
)

func pendingAction(entityID string, cancelIf []models.Condition) *models.ScheduledAction {
	now := time.Now().UTC()

	return &models.ScheduledAction{
		ID:         uuid.NewString(),
		TenantID:   testTenant,
		EntityType: "project",
		EntityID:   entityID,
		Action:     models.ActionItem{Type: models.ActionSlackNotify, Config: map[string]any{"message": "follow up on {name}"}},
		FireAt:     now.Add(-time.Minute),
		CancelIf:   cancelIf,
		Status:     models.ScheduledPending,
		CreatedAt:  now.Add(-time.Hour),
	}
}

func TestRunScheduledAction_Executes(t *testing.T) {
	engine, p := newTestEngine(t)
	ctx := context.Background()

	seedProject(t, p, "proj-1", "draft")

	scheduled := pendingAction("proj-1", nil)
	require.NoError(t, p.ScheduledActions().Save(ctx, scheduled))

	require.NoError(t, engine.RunScheduledAction(ctx, scheduled))

	got, err := p.ScheduledActions().ByID(ctx, testTenant, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduledExecuted, got.Status)
	require.NotNil(t, got.ProcessedAt)
}

func TestRunScheduledAction_CancelledByCondition(t *testing.T) {
	engine, p := newTestEngine(t)
	ctx := context.Background()

	// Status moved on since scheduling; the followup is moot.
	seedProject(t, p, "proj-1", "active")

	scheduled := pendingAction("proj-1", []models.Condition{
		{Field: "status", Operator: models.OpEquals, Value: "active"},
	})
	require.NoError(t, p.ScheduledActions().Save(ctx, scheduled))

	require.NoError(t, engine.RunScheduledAction(ctx, scheduled))

	got, err := p.ScheduledActions().ByID(ctx, testTenant, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduledCancelled, got.Status)
	assert.Contains(t, got.CancelReason, "status")
}

func TestRunScheduledAction_EntityGoneCancels(t *testing.T) {
	engine, p := newTestEngine(t)
	ctx := context.Background()

	scheduled := pendingAction("missing", nil)
	require.NoError(t, p.ScheduledActions().Save(ctx, scheduled))

	require.NoError(t, engine.RunScheduledAction(ctx, scheduled))

	got, err := p.ScheduledActions().ByID(ctx, testTenant, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduledCancelled, got.Status)
	assert.Contains(t, got.CancelReason, "entity")
}

func TestCancelScheduledAction(t *testing.T) {
	engine, p := newTestEngine(t)
	ctx := context.Background()

	seedProject(t, p, "proj-1", "draft")

	scheduled := pendingAction("proj-1", nil)
	require.NoError(t, p.ScheduledActions().Save(ctx, scheduled))

	cancelled, err := engine.CancelScheduledAction(ctx, scheduled.ID, "operator request")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduledCancelled, cancelled.Status)
	assert.Equal(t, "operator request", cancelled.CancelReason)

	// Cancelling twice fails; the row already left pending.
	_, err = engine.CancelScheduledAction(ctx, scheduled.ID, "again")
	assert.Error(t, err)
}

func TestScheduledProcessor_RoutesAndProcesses(t *testing.T) {
	_, p := newTestEngine(t)
	ctx := context.Background()

	seedProject(t, p, "proj-1", "draft")

	scheduled := pendingAction("proj-1", nil)
	require.NoError(t, p.ScheduledActions().Save(ctx, scheduled))

	manager := newTestManager(t, p)
	processor := workflow.NewScheduledProcessor(p.ScheduledActions(), manager, slog.Default())

	processed, err := processor.Run(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	got, err := p.ScheduledActions().ByID(ctx, testTenant, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduledExecuted, got.Status)

	// Nothing left due.
	processed, err = processor.Run(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, processed)
}
