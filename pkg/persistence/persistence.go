// Package persistence provides the data storage abstraction for rules,
// executions, entity workflow state and scheduled actions.
package persistence

import (
	"context"
	"time"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/protocol"
)

// RuleRepository reads tenant rule sets. Rule CRUD lives in the
// administrative service; the engine only loads.
type RuleRepository interface {
	RulesByTenant(ctx context.Context, tenantID string) ([]*models.WorkflowRule, error)
}

// ExecutionRepository stores firing audit records.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.WorkflowExecution) error
	ByID(ctx context.Context, tenantID, id string) (*models.WorkflowExecution, error)
	PendingApprovals(ctx context.Context, tenantID string) ([]*models.WorkflowExecution, error)
}

// EntityStateRepository tracks per-(rule, entity) execution counters, the
// sole memory behind cooldown and max-execution enforcement.
type EntityStateRepository interface {
	Get(ctx context.Context, tenantID, ruleID, entityType, entityID string) (*models.EntityWorkflowState, error)

	// Acquire atomically increments the execution counter iff neither the
	// cooldown window nor the max-execution cap blocks it, collapsing
	// check-and-act into one store round trip. It reports whether the
	// caller won the slot.
	Acquire(ctx context.Context, tenantID, ruleID, entityType, entityID string,
		cooldownHours, maxExecutions *int, now time.Time) (bool, error)
}

// ScheduledActionRepository stores deferred actions.
type ScheduledActionRepository interface {
	Save(ctx context.Context, action *models.ScheduledAction) error
	ByID(ctx context.Context, tenantID, id string) (*models.ScheduledAction, error)

	// Due returns pending actions whose fire time has passed, oldest
	// first, bounded by limit.
	Due(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledAction, error)
}

// EntityStore fetches and mutates business entities through the fixed
// entity-type to table mapping. Unknown entity types resolve to a bare
// {id} bag on fetch and an error on mutation.
type EntityStore interface {
	Fetch(ctx context.Context, tenantID, entityType, entityID string) (models.Entity, error)
	List(ctx context.Context, tenantID, entityType string) ([]models.Entity, error)

	UpdateStatus(ctx context.Context, tenantID, entityType, entityID, newStatus string) error

	// UpdateField writes a direct column, or merge-patches the JSON
	// metadata column when the field name is dotted.
	UpdateField(ctx context.Context, tenantID, entityType, entityID, field string, value any) error

	UpdateAssignment(ctx context.Context, tenantID, entityType, entityID, userID string) error
}

// Persistence aggregates every repository behind one backend.
type Persistence interface {
	Rules() RuleRepository
	Executions() ExecutionRepository
	EntityStates() EntityStateRepository
	ScheduledActions() ScheduledActionRepository
	Entities() EntityStore
	Tasks() protocol.TaskCreator

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
