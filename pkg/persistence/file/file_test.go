package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/persistence/file"
)

func setupPersistence(t *testing.T) (*file.Persistence, context.Context) {
	t.Helper()

	return file.NewPersistence(t.TempDir()), context.Background()
}

func TestHealthCheck(t *testing.T) {
	p, ctx := setupPersistence(t)

	assert.NoError(t, p.HealthCheck(ctx))

	missing := file.NewPersistence("/nonexistent/automation-test")
	assert.Error(t, missing.HealthCheck(ctx))
}

func TestRuleRepository_SaveAndLoadSorted(t *testing.T) {
	p, ctx := setupPersistence(t)

	now := time.Now().UTC()

	low := &models.WorkflowRule{
		ID: uuid.NewString(), TenantID: "tenant-1", Name: "Low priority",
		TriggerType: models.TriggerManual, Priority: 1, CreatedAt: now, UpdatedAt: now,
	}
	high := &models.WorkflowRule{
		ID: uuid.NewString(), TenantID: "tenant-1", Name: "High priority",
		TriggerType: models.TriggerManual, Priority: 10, CreatedAt: now.Add(time.Minute), UpdatedAt: now,
	}

	require.NoError(t, p.RuleRepository().Save(ctx, low))
	require.NoError(t, p.RuleRepository().Save(ctx, high))

	rules, err := p.Rules().RulesByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, high.ID, rules[0].ID)
	assert.Equal(t, low.ID, rules[1].ID)

	other, err := p.Rules().RulesByTenant(ctx, "tenant-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestExecutionRepository_PendingApprovals(t *testing.T) {
	p, ctx := setupPersistence(t)

	now := time.Now().UTC()

	pending := &models.WorkflowExecution{
		ID: uuid.NewString(), TenantID: "tenant-1", RuleID: uuid.NewString(),
		EntityType: "project", EntityID: "proj-1",
		TriggerType: models.TriggerStatusChange,
		Result:      models.ResultPendingApproval, StartedAt: now,
	}
	done := &models.WorkflowExecution{
		ID: uuid.NewString(), TenantID: "tenant-1", RuleID: uuid.NewString(),
		EntityType: "project", EntityID: "proj-2",
		TriggerType: models.TriggerStatusChange,
		Result:      models.ResultSuccess, StartedAt: now.Add(-time.Hour),
	}

	require.NoError(t, p.Executions().Save(ctx, pending))
	require.NoError(t, p.Executions().Save(ctx, done))

	approvals, err := p.Executions().PendingApprovals(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, pending.ID, approvals[0].ID)

	got, err := p.Executions().ByID(ctx, "tenant-1", done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultSuccess, got.Result)

	_, err = p.Executions().ByID(ctx, "tenant-1", uuid.NewString())
	assert.ErrorIs(t, err, persistence.ErrExecutionNotFound)
}

func TestEntityStateRepository_Acquire(t *testing.T) {
	p, ctx := setupPersistence(t)

	ruleID := uuid.NewString()
	cooldown := 24
	maxExecutions := 2
	now := time.Now().UTC()

	ok, err := p.EntityStates().Acquire(ctx, "tenant-1", ruleID, "project", "proj-1", &cooldown, &maxExecutions, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.EntityStates().Acquire(ctx, "tenant-1", ruleID, "project", "proj-1", &cooldown, &maxExecutions, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "cooldown window should block")

	ok, err = p.EntityStates().Acquire(ctx, "tenant-1", ruleID, "project", "proj-1", &cooldown, &maxExecutions, now.Add(25*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.EntityStates().Acquire(ctx, "tenant-1", ruleID, "project", "proj-1", &cooldown, &maxExecutions, now.Add(50*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "execution cap should block")

	state, err := p.EntityStates().Get(ctx, "tenant-1", ruleID, "project", "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 2, state.ExecutionCount)

	_, err = p.EntityStates().Get(ctx, "tenant-1", ruleID, "project", "missing")
	assert.ErrorIs(t, err, persistence.ErrStateNotFound)
}

func TestScheduledActionRepository_Due(t *testing.T) {
	p, ctx := setupPersistence(t)

	now := time.Now().UTC()

	overdue := &models.ScheduledAction{
		ID: uuid.NewString(), TenantID: "tenant-1", EntityType: "thread", EntityID: "thread-1",
		Action: models.ActionItem{Type: models.ActionSlackNotify, Config: map[string]any{"message": "hi"}},
		FireAt: now.Add(-time.Hour), Status: models.ScheduledPending, CreatedAt: now.Add(-2 * time.Hour),
	}
	future := &models.ScheduledAction{
		ID: uuid.NewString(), TenantID: "tenant-1", EntityType: "thread", EntityID: "thread-2",
		Action: models.ActionItem{Type: models.ActionSlackNotify, Config: map[string]any{"message": "later"}},
		FireAt: now.Add(time.Hour), Status: models.ScheduledPending, CreatedAt: now,
	}

	require.NoError(t, p.ScheduledActions().Save(ctx, overdue))
	require.NoError(t, p.ScheduledActions().Save(ctx, future))

	due, err := p.ScheduledActions().Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, overdue.ID, due[0].ID)

	processedAt := now
	overdue.Status = models.ScheduledExecuted
	overdue.ProcessedAt = &processedAt
	require.NoError(t, p.ScheduledActions().Save(ctx, overdue))

	due, err = p.ScheduledActions().Due(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestEntityStore_Mutations(t *testing.T) {
	p, ctx := setupPersistence(t)

	entity := models.Entity{"id": "proj-1", "name": "Atlas", "status": "draft"}
	require.NoError(t, p.EntityStore().Save(ctx, "tenant-1", "project", entity))

	require.NoError(t, p.Entities().UpdateStatus(ctx, "tenant-1", "project", "proj-1", "active"))
	require.NoError(t, p.Entities().UpdateAssignment(ctx, "tenant-1", "project", "proj-1", "user-7"))
	require.NoError(t, p.Entities().UpdateField(ctx, "tenant-1", "project", "proj-1", "campaign.budget", 5000))

	got, err := p.Entities().Fetch(ctx, "tenant-1", "project", "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "active", got["status"])
	assert.Equal(t, "user-7", got["assignee_id"])
	assert.Contains(t, got, "status_changed_at")

	metadata, ok := got["metadata"].(map[string]any)
	require.True(t, ok)
	campaign, ok := metadata["campaign"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5000), campaign["budget"])

	_, err = p.Entities().Fetch(ctx, "tenant-1", "invoice", "inv-1")
	assert.ErrorIs(t, err, persistence.ErrUnknownEntityType)

	_, err = p.Entities().Fetch(ctx, "tenant-1", "project", "missing")
	assert.ErrorIs(t, err, persistence.ErrEntityNotFound)
}
