package models

// Operator is one of the fixed comparison operators a condition may use.
// The spellings are camelCase because rule JSON is authored by the
// administrative UI, which predates this service.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpGreaterThan        Operator = "greaterThan"
	OpLessThan           Operator = "lessThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
	OpIn                 Operator = "in"
	OpNotIn              Operator = "notIn"
	OpContains           Operator = "contains"
	OpStartsWith         Operator = "startsWith"
	OpEndsWith           Operator = "endsWith"
	OpExists             Operator = "exists"
	OpNotExists          Operator = "notExists"
	OpMatches            Operator = "matches"
)

// Condition compares a resolved field against a literal value.
//
// Field is a dotted path, optionally prefixed with "previous.", "user."
// or "computed.". Unprefixed names are checked against computed fields
// first, then resolved against the entity.
type Condition struct {
	Field    string   `json:"field"    validate:"required"`
	Operator Operator `json:"operator" validate:"required"`
	Value    any      `json:"value"`
}

// ConditionResult records one condition's evaluation inside an execution.
type ConditionResult struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Expected any      `json:"expected"`
	Actual   any      `json:"actual"`
	Passed   bool     `json:"passed"`
}
