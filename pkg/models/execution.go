package models

import "time"

// ExecutionResult is the aggregate outcome of one firing attempt.
//
// pending_approval is the only non-terminal value: it transitions exactly
// once to success/partial/failed on approval. Rejection records metadata
// and forces skipped.
type ExecutionResult string

const (
	ResultSuccess         ExecutionResult = "success"
	ResultPartial         ExecutionResult = "partial"
	ResultFailed          ExecutionResult = "failed"
	ResultSkipped         ExecutionResult = "skipped"
	ResultPendingApproval ExecutionResult = "pending_approval"
)

// WorkflowExecution is the audit record for one firing attempt of a rule
// against one entity. Created as soon as the trigger matches, even when
// conditions later fail; never deleted by the engine.
type WorkflowExecution struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name,omitempty"`

	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`

	TriggerType     TriggerType    `json:"trigger_type"`
	TriggerSnapshot map[string]any `json:"trigger_snapshot,omitempty"`

	ConditionResults []ConditionResult `json:"condition_results,omitempty"`
	ConditionsPassed bool              `json:"conditions_passed"`

	ActionsTaken []ActionResult  `json:"actions_taken,omitempty"`
	Result       ExecutionResult `json:"result"`

	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ClassifyActionResults folds per-action outcomes into an aggregate
// result: all succeeded, none succeeded, or mixed.
func ClassifyActionResults(results []ActionResult) ExecutionResult {
	if len(results) == 0 {
		return ResultSuccess
	}

	succeeded := 0

	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	switch succeeded {
	case len(results):
		return ResultSuccess
	case 0:
		return ResultFailed
	default:
		return ResultPartial
	}
}
