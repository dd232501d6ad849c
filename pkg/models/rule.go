// Package models defines the core domain models for the rule automation engine.
package models

import (
	"slices"
	"sort"
	"time"
)

// TriggerType identifies the event kind a rule reacts to.
type TriggerType string

const (
	TriggerStatusChange TriggerType = "status_change" // entity moved between statuses
	TriggerTimeElapsed  TriggerType = "time_elapsed"  // entity sat in a status too long
	TriggerEvent        TriggerType = "event"         // named domain event
	TriggerManual       TriggerType = "manual"        // explicit invocation by id
)

// TriggerConfig carries the trigger-kind-specific match configuration.
// Only the fields relevant to the rule's TriggerType are populated.
type TriggerConfig struct {
	// status_change: empty set means "any".
	FromStatus []string `json:"from_status,omitempty"`
	ToStatus   []string `json:"to_status,omitempty"`

	// time_elapsed: fire once the entity has been in Status for at least
	// Hours + 24*Days hours.
	Status string `json:"status,omitempty"`
	Hours  int    `json:"hours,omitempty"`
	Days   int    `json:"days,omitempty"`

	// event
	EventName string `json:"event_name,omitempty"`
}

// ElapsedThresholdHours returns the configured time_elapsed threshold.
func (c TriggerConfig) ElapsedThresholdHours() float64 {
	return float64(c.Hours) + 24*float64(c.Days)
}

// WorkflowRule is a tenant-scoped automation definition: when the trigger
// fires and every condition holds, the actions run in order.
type WorkflowRule struct {
	ID          string `json:"id"          validate:"required"`
	TenantID    string `json:"tenant_id"   validate:"required"`
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	// Higher priority fires first; ties break on creation order.
	Priority int `json:"priority"`

	TriggerType   TriggerType   `json:"trigger_type" validate:"required,oneof=status_change time_elapsed event manual"`
	TriggerConfig TriggerConfig `json:"trigger_config"`

	Conditions []Condition  `json:"conditions"` // ANDed
	Actions    []ActionItem `json:"actions"`    // sequential

	CooldownHours *int `json:"cooldown_hours,omitempty" validate:"omitempty,min=1"`
	MaxExecutions *int `json:"max_executions,omitempty" validate:"omitempty,min=1"`

	RequiresApproval bool   `json:"requires_approval"`
	ApproverRole     string `json:"approver_role,omitempty"`

	// Empty means the rule applies to every entity type.
	EntityTypes []string `json:"entity_types,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppliesTo reports whether the rule covers the given entity type.
func (r *WorkflowRule) AppliesTo(entityType string) bool {
	return len(r.EntityTypes) == 0 || slices.Contains(r.EntityTypes, entityType)
}

// SortRules orders rules by priority descending, creation order ascending.
func SortRules(rules []*WorkflowRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}

		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}
