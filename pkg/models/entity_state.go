package models

import "time"

// EntityWorkflowState is the per-(rule, entity) counter backing cooldown
// and max-execution enforcement. Execution count only ever grows.
type EntityWorkflowState struct {
	TenantID       string     `json:"tenant_id"`
	RuleID         string     `json:"rule_id"`
	EntityType     string     `json:"entity_type"`
	EntityID       string     `json:"entity_id"`
	ExecutionCount int        `json:"execution_count"`
	LastExecutedAt *time.Time `json:"last_executed_at,omitempty"`
}
