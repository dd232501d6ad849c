// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumahq/automation/pkg/models"
)

// CreateTestRule creates a test WorkflowRule with default values that can be overridden.
func CreateTestRule(overrides ...func(*models.WorkflowRule)) *models.WorkflowRule {
	rule := &models.WorkflowRule{
		ID:          uuid.New().String(),
		TenantID:    "tenant-1",
		Name:        "Test Rule",
		IsActive:    true,
		TriggerType: models.TriggerStatusChange,
		TriggerConfig: models.TriggerConfig{
			ToStatus: []string{"active"},
		},
		Actions: []models.ActionItem{
			{Type: models.ActionUpdateField, Config: map[string]any{"field": "touched", "value": true}},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(rule)
	}

	return rule
}

// WithTenant sets the owning tenant.
func WithTenant(tenantID string) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.TenantID = tenantID
	}
}

// WithStatusChangeTrigger configures a status_change trigger.
func WithStatusChangeTrigger(from, to []string) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.TriggerType = models.TriggerStatusChange
		r.TriggerConfig = models.TriggerConfig{FromStatus: from, ToStatus: to}
	}
}

// WithEventTrigger configures an event trigger for the named domain event.
func WithEventTrigger(eventName string) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.TriggerType = models.TriggerEvent
		r.TriggerConfig = models.TriggerConfig{EventName: eventName}
	}
}

// WithManualTrigger configures the rule for explicit invocation only.
func WithManualTrigger() func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.TriggerType = models.TriggerManual
		r.TriggerConfig = models.TriggerConfig{}
	}
}

// WithActions replaces the rule's action list.
func WithActions(actions ...models.ActionItem) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.Actions = actions
	}
}

// WithConditions replaces the rule's condition list.
func WithConditions(conditions ...models.Condition) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.Conditions = conditions
	}
}

// WithApproval marks the rule as requiring approval before actions run.
func WithApproval(approverRole string) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.RequiresApproval = true
		r.ApproverRole = approverRole
	}
}

// WithEntityTypes restricts the rule to the given entity types.
func WithEntityTypes(entityTypes ...string) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.EntityTypes = entityTypes
	}
}

// WithInactive deactivates the rule.
func WithInactive() func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.IsActive = false
	}
}

// CreateTestEntity creates a test entity document with default values that can be overridden.
func CreateTestEntity(overrides ...func(models.Entity)) models.Entity {
	entity := models.Entity{
		"id":         uuid.New().String(),
		"name":       "Test Project",
		"status":     "draft",
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}

	for _, override := range overrides {
		override(entity)
	}

	return entity
}

// WithField sets one field on the entity document.
func WithField(key string, value any) func(models.Entity) {
	return func(e models.Entity) {
		e[key] = value
	}
}
