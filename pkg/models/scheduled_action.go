package models

import "time"

// ScheduledActionStatus is the lifecycle state of a deferred action.
// pending is the only non-terminal value; a row leaves it exactly once.
type ScheduledActionStatus string

const (
	ScheduledPending   ScheduledActionStatus = "pending"
	ScheduledExecuted  ScheduledActionStatus = "executed"
	ScheduledCancelled ScheduledActionStatus = "cancelled"
	ScheduledFailed    ScheduledActionStatus = "failed"
)

// ScheduledAction is a deferred action created by schedule_followup. At
// fire time the processor re-evaluates CancelIf against the entity's
// current state before running the nested action.
type ScheduledAction struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	RuleID     string `json:"rule_id,omitempty"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`

	Action   ActionItem  `json:"action"`
	FireAt   time.Time   `json:"fire_at"`
	CancelIf []Condition `json:"cancel_if,omitempty"`

	Status       ScheduledActionStatus `json:"status"`
	CancelReason string                `json:"cancel_reason,omitempty"`
	Error        string                `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
