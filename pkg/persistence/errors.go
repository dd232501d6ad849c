// Package persistence provides standardized error types for persistence
// operations.
package persistence

import "errors"

var (
	// ErrRuleNotFound indicates no rule exists for the given identifier.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrExecutionNotFound indicates no execution record exists for the
	// given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrScheduledActionNotFound indicates no scheduled action exists for
	// the given identifier.
	ErrScheduledActionNotFound = errors.New("scheduled action not found")

	// ErrEntityNotFound indicates the entity row is gone.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrUnknownEntityType indicates the entity type has no backing table.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrStateNotFound indicates no workflow state row exists yet for the
	// (rule, entity) pair. Callers treat this as "never fired".
	ErrStateNotFound = errors.New("entity workflow state not found")
)

// IsRuleNotFound checks if an error indicates a missing rule.
func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

// IsExecutionNotFound checks if an error indicates a missing execution.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsScheduledActionNotFound checks if an error indicates a missing
// scheduled action.
func IsScheduledActionNotFound(err error) bool {
	return errors.Is(err, ErrScheduledActionNotFound)
}

// IsEntityNotFound checks if an error indicates a missing entity row.
func IsEntityNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}
