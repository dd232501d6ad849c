package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/persistence/postgresql"
	"github.com/lumahq/automation/pkg/protocol"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{
		"scheduled_actions", "entity_workflow_states", "workflow_executions",
		"workflow_rules", "projects", "schema_migrations",
	} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("automation_test"),
			postgres.WithUsername("automation"),
			postgres.WithPassword("automation"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

// createProjectsTable stands in for a host-application entity table.
func createProjectsTable(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, db.Close())
	}()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE projects (
			id VARCHAR(255) PRIMARY KEY,
			tenant_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(50) NOT NULL,
			assignee_id VARCHAR(255),
			metadata JSONB,
			status_changed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO projects (id, tenant_id, name, status) VALUES
			('proj-1', 'tenant-1', 'Atlas', 'draft'),
			('proj-2', 'tenant-1', 'Borealis', 'active'),
			('proj-3', 'tenant-2', 'Cascade', 'draft')
	`)
	require.NoError(t, err)
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	for _, table := range []string{"workflow_rules", "workflow_executions", "entity_workflow_states", "scheduled_actions"} {
		var exists bool

		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table+" table should exist")
	}
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestRuleRepository_SaveAndLoad(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	cooldown := 24
	now := time.Now().UTC().Truncate(time.Millisecond)

	rule := &models.WorkflowRule{
		ID:          uuid.NewString(),
		TenantID:    "tenant-1",
		Name:        "Escalate stale drafts",
		Description: "Nudges drafts that sat too long",
		IsActive:    true,
		Priority:    10,
		TriggerType: models.TriggerTimeElapsed,
		TriggerConfig: models.TriggerConfig{
			Status: "draft",
			Days:   2,
		},
		Conditions: []models.Condition{
			{Field: "status", Operator: models.OpEquals, Value: "draft"},
		},
		Actions: []models.ActionItem{
			{Type: models.ActionSlackNotify, Config: map[string]any{"message": "stale: {name}"}},
		},
		CooldownHours: &cooldown,
		EntityTypes:   []string{"project"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	require.NoError(t, p.RuleRepository().Save(ctx, rule))

	rules, err := p.Rules().RulesByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, rules, 1)

	got := rules[0]
	assert.Equal(t, rule.ID, got.ID)
	assert.Equal(t, models.TriggerTimeElapsed, got.TriggerType)
	assert.Equal(t, 2, got.TriggerConfig.Days)
	require.NotNil(t, got.CooldownHours)
	assert.Equal(t, 24, *got.CooldownHours)
	assert.Nil(t, got.MaxExecutions)
	require.Len(t, got.Conditions, 1)
	assert.Equal(t, models.OpEquals, got.Conditions[0].Operator)
	require.Len(t, got.Actions, 1)
	assert.Equal(t, models.ActionSlackNotify, got.Actions[0].Type)

	other, err := p.Rules().RulesByTenant(ctx, "tenant-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestExecutionRepository_SaveAndPendingApprovals(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Millisecond)

	execution := &models.WorkflowExecution{
		ID:          uuid.NewString(),
		TenantID:    "tenant-1",
		RuleID:      uuid.NewString(),
		RuleName:    "Escalate stale drafts",
		EntityType:  "project",
		EntityID:    "proj-1",
		TriggerType: models.TriggerStatusChange,
		ConditionResults: []models.ConditionResult{
			{Field: "status", Operator: models.OpEquals, Expected: "draft", Actual: "draft", Passed: true},
		},
		ConditionsPassed: true,
		Result:           models.ResultPendingApproval,
		StartedAt:        now,
	}

	require.NoError(t, p.Executions().Save(ctx, execution))

	pending, err := p.Executions().PendingApprovals(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, execution.ID, pending[0].ID)
	assert.True(t, pending[0].ConditionsPassed)

	// Approve and re-save; the record leaves the pending queue.
	approvedAt := now.Add(time.Minute)
	execution.ApprovedBy = "user-1"
	execution.ApprovedAt = &approvedAt
	execution.Result = models.ResultSuccess
	execution.ActionsTaken = []models.ActionResult{
		{Type: models.ActionSlackNotify, Success: true},
	}
	execution.CompletedAt = &approvedAt

	require.NoError(t, p.Executions().Save(ctx, execution))

	pending, err = p.Executions().PendingApprovals(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := p.Executions().ByID(ctx, "tenant-1", execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultSuccess, got.Result)
	assert.Equal(t, "user-1", got.ApprovedBy)
	require.Len(t, got.ActionsTaken, 1)

	_, err = p.Executions().ByID(ctx, "tenant-1", uuid.NewString())
	assert.ErrorIs(t, err, persistence.ErrExecutionNotFound)
}

func TestEntityStateRepository_AcquireCooldownAndCap(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	ruleID := uuid.NewString()
	cooldown := 24
	maxExecutions := 2
	now := time.Now().UTC()

	// First acquisition creates the row.
	ok, err := p.EntityStates().Acquire(ctx, "tenant-1", ruleID, "project", "proj-1", &cooldown, &maxExecutions, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Inside the cooldown window.
	ok, err = p.EntityStates().Acquire(ctx, "tenant-1", ruleID, "project", "proj-1", &cooldown, &maxExecutions, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	// Past the cooldown window.
	ok, err = p.EntityStates().Acquire(ctx, "tenant-1", ruleID, "project", "proj-1", &cooldown, &maxExecutions, now.Add(25*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	// At the execution cap.
	ok, err = p.EntityStates().Acquire(ctx, "tenant-1", ruleID, "project", "proj-1", &cooldown, &maxExecutions, now.Add(50*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	state, err := p.EntityStates().Get(ctx, "tenant-1", ruleID, "project", "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 2, state.ExecutionCount)

	_, err = p.EntityStates().Get(ctx, "tenant-1", ruleID, "project", "missing")
	assert.ErrorIs(t, err, persistence.ErrStateNotFound)
}

func TestScheduledActionRepository_DueOrdering(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Millisecond)

	later := &models.ScheduledAction{
		ID:         uuid.NewString(),
		TenantID:   "tenant-1",
		EntityType: "thread",
		EntityID:   "thread-1",
		Action:     models.ActionItem{Type: models.ActionSendMessage, Config: map[string]any{"to": "contact", "template": "hi"}},
		FireAt:     now.Add(-time.Minute),
		Status:     models.ScheduledPending,
		CreatedAt:  now.Add(-2 * time.Hour),
	}
	earlier := &models.ScheduledAction{
		ID:         uuid.NewString(),
		TenantID:   "tenant-1",
		EntityType: "thread",
		EntityID:   "thread-2",
		Action:     models.ActionItem{Type: models.ActionSlackNotify, Config: map[string]any{"message": "hi"}},
		FireAt:     now.Add(-time.Hour),
		CancelIf: []models.Condition{
			{Field: "status", Operator: models.OpEquals, Value: "replied"},
		},
		Status:    models.ScheduledPending,
		CreatedAt: now.Add(-2 * time.Hour),
	}
	future := &models.ScheduledAction{
		ID:         uuid.NewString(),
		TenantID:   "tenant-1",
		EntityType: "thread",
		EntityID:   "thread-3",
		Action:     models.ActionItem{Type: models.ActionSlackNotify, Config: map[string]any{"message": "later"}},
		FireAt:     now.Add(time.Hour),
		Status:     models.ScheduledPending,
		CreatedAt:  now,
	}

	for _, action := range []*models.ScheduledAction{later, earlier, future} {
		require.NoError(t, p.ScheduledActions().Save(ctx, action))
	}

	due, err := p.ScheduledActions().Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, earlier.ID, due[0].ID)
	assert.Equal(t, later.ID, due[1].ID)
	require.Len(t, due[0].CancelIf, 1)

	// Mark executed; it leaves the due set.
	processedAt := now
	earlier.Status = models.ScheduledExecuted
	earlier.ProcessedAt = &processedAt
	require.NoError(t, p.ScheduledActions().Save(ctx, earlier))

	due, err = p.ScheduledActions().Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, later.ID, due[0].ID)

	_, err = p.ScheduledActions().ByID(ctx, "tenant-1", uuid.NewString())
	assert.ErrorIs(t, err, persistence.ErrScheduledActionNotFound)
}

func TestEntityStore_FetchAndMutate(t *testing.T) {
	p, ctx, databaseURL := setupTestDB(t)

	createProjectsTable(ctx, t, databaseURL)

	entity, err := p.Entities().Fetch(ctx, "tenant-1", "project", "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Atlas", entity["name"])
	assert.Equal(t, "draft", entity["status"])

	entities, err := p.Entities().List(ctx, "tenant-1", "project")
	require.NoError(t, err)
	assert.Len(t, entities, 2)

	require.NoError(t, p.Entities().UpdateStatus(ctx, "tenant-1", "project", "proj-1", "active"))
	require.NoError(t, p.Entities().UpdateAssignment(ctx, "tenant-1", "project", "proj-1", "user-7"))
	require.NoError(t, p.Entities().UpdateField(ctx, "tenant-1", "project", "proj-1", "name", "Atlas II"))
	require.NoError(t, p.Entities().UpdateField(ctx, "tenant-1", "project", "proj-1", "campaign.budget", float64(5000)))

	entity, err = p.Entities().Fetch(ctx, "tenant-1", "project", "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "active", entity["status"])
	assert.Equal(t, "user-7", entity["assignee_id"])
	assert.Equal(t, "Atlas II", entity["name"])

	metadata, ok := entity["metadata"].(map[string]any)
	require.True(t, ok)
	campaign, ok := metadata["campaign"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5000), campaign["budget"])

	// Tenant isolation.
	_, err = p.Entities().Fetch(ctx, "tenant-1", "project", "proj-3")
	assert.ErrorIs(t, err, persistence.ErrEntityNotFound)

	// Unknown entity type.
	_, err = p.Entities().Fetch(ctx, "tenant-1", "invoice", "inv-1")
	assert.ErrorIs(t, err, persistence.ErrUnknownEntityType)

	err = p.Entities().UpdateStatus(ctx, "tenant-1", "invoice", "inv-1", "paid")
	assert.ErrorIs(t, err, persistence.ErrUnknownEntityType)
}

// createTasksTable stands in for the host application's tasks table.
func createTasksTable(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, db.Close())
	}()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE tasks (
			id VARCHAR(255) PRIMARY KEY,
			tenant_id VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			assignee_id VARCHAR(255),
			due_at TIMESTAMP WITH TIME ZONE,
			entity_type VARCHAR(100),
			entity_id VARCHAR(255),
			status VARCHAR(50) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	require.NoError(t, err)
}

func TestTaskCreator_CreateTask(t *testing.T) {
	p, ctx, databaseURL := setupTestDB(t)

	createTasksTable(ctx, t, databaseURL)

	dueAt := time.Now().UTC().Add(48 * time.Hour)

	id, err := p.Tasks().CreateTask(ctx, protocol.NewTask{
		TenantID:    "tenant-1",
		Title:       "Review stale project",
		Description: "Project Atlas sat in draft too long",
		AssigneeID:  "user-7",
		DueAt:       &dueAt,
		EntityType:  "project",
		EntityID:    "proj-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// The row lands as a task entity readable through the entity store.
	entity, err := p.Entities().Fetch(ctx, "tenant-1", "task", id)
	require.NoError(t, err)
	assert.Equal(t, "Review stale project", entity["title"])
	assert.Equal(t, "user-7", entity["assignee_id"])
	assert.Equal(t, "open", entity["status"])
}
