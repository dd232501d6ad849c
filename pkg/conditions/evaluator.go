// Package conditions applies a rule's condition list to a resolved
// evaluation context. Operators never panic on malformed input: invalid
// patterns and non-comparable operands evaluate to false.
package conditions

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/models"
)

// nowLiteral is the sentinel an author writes to compare against
// wall-clock now. Dates within nowTolerance of now count as equal.
const nowLiteral = "now"

const nowTolerance = 60 * time.Second

// Evaluation is the outcome of evaluating a rule's condition list.
type Evaluation struct {
	Passed  bool
	Results []models.ConditionResult
}

// Evaluate ANDs every condition. An empty list passes trivially.
func Evaluate(conditions []models.Condition, ctx fields.Context) Evaluation {
	eval := Evaluation{Passed: true}

	for _, cond := range conditions {
		actual, _ := ctx.Resolve(cond.Field)
		passed := apply(cond.Operator, actual, cond.Value)

		eval.Results = append(eval.Results, models.ConditionResult{
			Field:    cond.Field,
			Operator: cond.Operator,
			Expected: cond.Value,
			Actual:   actual,
			Passed:   passed,
		})

		if !passed {
			eval.Passed = false
		}
	}

	return eval
}

func apply(op models.Operator, actual, expected any) bool {
	switch op {
	case models.OpEquals:
		return valuesEqual(actual, expected)
	case models.OpNotEquals:
		return !valuesEqual(actual, expected)
	case models.OpGreaterThan:
		return compare(actual, expected) > 0
	case models.OpLessThan:
		return compare(actual, expected) < 0
	case models.OpGreaterThanOrEqual:
		return compare(actual, expected) >= 0
	case models.OpLessThanOrEqual:
		return compare(actual, expected) <= 0
	case models.OpIn:
		return membership(actual, expected)
	case models.OpNotIn:
		list, ok := asList(expected)
		if !ok {
			return false
		}

		return !containsValue(list, actual)
	case models.OpContains:
		return contains(actual, expected)
	case models.OpStartsWith:
		return stringAffix(actual, expected, strings.HasPrefix)
	case models.OpEndsWith:
		return stringAffix(actual, expected, strings.HasSuffix)
	case models.OpExists:
		return actual != nil
	case models.OpNotExists:
		return actual == nil
	case models.OpMatches:
		return matches(actual, expected)
	default:
		// Unknown operators fail safe.
		return false
	}
}

// valuesEqual implements the null-aware, type-coercing equality shared by
// equals, in and notIn.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	if s, ok := expected.(string); ok {
		if s == nowLiteral {
			at, ok := fields.ParseTime(actual)
			if !ok {
				return false
			}

			diff := time.Since(at)
			if diff < 0 {
				diff = -diff
			}

			return diff <= nowTolerance
		}

		return strings.EqualFold(render(actual), s)
	}

	if want, ok := fields.ToFloat(expected); ok {
		if _, isBool := expected.(bool); !isBool {
			got, ok := fields.ToFloat(actual)

			return ok && got == want
		}
	}

	if want, ok := expected.(bool); ok {
		got, ok2 := fields.ToBool(actual)

		return ok2 && got == want
	}

	return strings.EqualFold(render(actual), render(expected))
}

// compare returns the sign of actual-expected: date comparison first
// (including the "now" sentinel), then numeric. Non-comparable operands
// compare equal, which makes strict inequalities conservatively false.
func compare(actual, expected any) int {
	if at, ok := fields.ParseTime(actual); ok {
		var want time.Time

		if s, isStr := expected.(string); isStr && s == nowLiteral {
			want = time.Now()
		} else if parsed, ok := fields.ParseTime(expected); ok {
			want = parsed
		} else {
			want = time.Time{}
		}

		if !want.IsZero() {
			switch {
			case at.After(want):
				return 1
			case at.Before(want):
				return -1
			default:
				return 0
			}
		}
	}

	got, okA := fields.ToFloat(actual)
	want, okE := fields.ToFloat(expected)

	if !okA || !okE {
		return 0
	}

	switch {
	case got > want:
		return 1
	case got < want:
		return -1
	default:
		return 0
	}
}

func membership(actual, expected any) bool {
	list, ok := asList(expected)
	if !ok {
		return false
	}

	return containsValue(list, actual)
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}

		return out, true
	}

	return nil, false
}

func containsValue(list []any, actual any) bool {
	for _, item := range list {
		if valuesEqual(actual, item) {
			return true
		}
	}

	return false
}

// contains is substring for string actuals, membership for array actuals.
func contains(actual, expected any) bool {
	switch v := actual.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), strings.ToLower(render(expected)))
	case []any:
		return containsValue(v, expected)
	case []string:
		list, _ := asList(v)

		return containsValue(list, expected)
	}

	return false
}

func stringAffix(actual, expected any, fn func(string, string) bool) bool {
	a, okA := actual.(string)
	e, okE := expected.(string)

	if !okA || !okE {
		return false
	}

	return fn(strings.ToLower(a), strings.ToLower(e))
}

func matches(actual, expected any) bool {
	a, okA := actual.(string)
	pattern, okE := expected.(string)

	if !okA || !okE {
		return false
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}

	return re.MatchString(a)
}

func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}
