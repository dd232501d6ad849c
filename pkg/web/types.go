// Package web provides HTTP request and response types for the rule
// engine API.
package web

// ApproveExecutionRequest records who approved a gated execution.
type ApproveExecutionRequest struct {
	ApprovedBy string `json:"approved_by" validate:"required"`
}

// RejectExecutionRequest records who rejected a gated execution and why.
type RejectExecutionRequest struct {
	RejectedBy string `json:"rejected_by" validate:"required"`
	Reason     string `json:"reason,omitempty"`
}

// TriggerRuleRequest fires a manual-trigger rule against one entity.
// BypassChecks skips the cooldown and max-execution limiter.
type TriggerRuleRequest struct {
	RuleID       string         `json:"rule_id"     validate:"required"`
	EntityType   string         `json:"entity_type" validate:"required"`
	EntityID     string         `json:"entity_id"   validate:"required"`
	User         map[string]any `json:"user,omitempty"`
	BypassChecks bool           `json:"bypass_checks,omitempty"`
}

// CancelScheduledActionRequest cancels a pending deferred action.
type CancelScheduledActionRequest struct {
	Reason string `json:"reason,omitempty"`
}
