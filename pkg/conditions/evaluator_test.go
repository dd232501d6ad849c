package conditions

import (
	"testing"
	"time"

	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/models"
	"github.com/stretchr/testify/assert"
)

func evalOne(t *testing.T, ctx fields.Context, field string, op models.Operator, value any) bool {
	t.Helper()

	eval := Evaluate([]models.Condition{{Field: field, Operator: op, Value: value}}, ctx)

	return eval.Passed
}

func testContext() fields.Context {
	return fields.Context{
		Entity: models.Entity{
			"status":   "pending",
			"budget":   "1500",
			"tags":     []any{"vip", "urgent"},
			"email":    "creator@example.com",
			"verified": "yes",
			"dueDate":  "2026-09-01T00:00:00Z",
		},
		Computed: map[string]any{
			"hoursInStatus": 30,
		},
	}
}

func TestEvaluate_AllOperators(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name  string
		field string
		op    models.Operator
		value any
		want  bool
	}{
		{"equals case-insensitive pass", "status", models.OpEquals, "PENDING", true},
		{"equals fail", "status", models.OpEquals, "active", false},
		{"equals numeric coercion pass", "budget", models.OpEquals, float64(1500), true},
		{"equals numeric coercion fail", "budget", models.OpEquals, float64(99), false},
		{"equals boolean coercion pass", "verified", models.OpEquals, true, true},
		{"notEquals pass", "status", models.OpNotEquals, "active", true},
		{"notEquals fail", "status", models.OpNotEquals, "pending", false},
		{"greaterThan pass", "hoursInStatus", models.OpGreaterThan, float64(24), true},
		{"greaterThan fail", "hoursInStatus", models.OpGreaterThan, float64(48), false},
		{"greaterThan non-comparable is false", "status", models.OpGreaterThan, float64(1), false},
		{"lessThan pass", "hoursInStatus", models.OpLessThan, float64(48), true},
		{"lessThan fail", "hoursInStatus", models.OpLessThan, float64(24), false},
		{"greaterThanOrEqual boundary pass", "hoursInStatus", models.OpGreaterThanOrEqual, float64(30), true},
		{"greaterThanOrEqual fail", "hoursInStatus", models.OpGreaterThanOrEqual, float64(31), false},
		{"lessThanOrEqual boundary pass", "hoursInStatus", models.OpLessThanOrEqual, float64(30), true},
		{"lessThanOrEqual fail", "hoursInStatus", models.OpLessThanOrEqual, float64(29), false},
		{"in pass", "status", models.OpIn, []any{"pending", "active"}, true},
		{"in fail", "status", models.OpIn, []any{"done", "cancelled"}, false},
		{"in non-array literal is false", "status", models.OpIn, "pending", false},
		{"notIn pass", "status", models.OpNotIn, []any{"done", "cancelled"}, true},
		{"notIn fail", "status", models.OpNotIn, []any{"pending", "active"}, false},
		{"contains substring pass", "email", models.OpContains, "EXAMPLE", true},
		{"contains substring fail", "email", models.OpContains, "gmail", false},
		{"contains array membership pass", "tags", models.OpContains, "vip", true},
		{"contains array membership fail", "tags", models.OpContains, "vi", false},
		{"startsWith pass", "email", models.OpStartsWith, "Creator", true},
		{"startsWith fail", "email", models.OpStartsWith, "admin", false},
		{"startsWith non-string is false", "hoursInStatus", models.OpStartsWith, "3", false},
		{"endsWith pass", "email", models.OpEndsWith, ".COM", true},
		{"endsWith fail", "email", models.OpEndsWith, ".org", false},
		{"exists pass", "status", models.OpExists, nil, true},
		{"exists fail", "missingField", models.OpExists, nil, false},
		{"notExists pass", "missingField", models.OpNotExists, nil, true},
		{"notExists fail", "status", models.OpNotExists, nil, false},
		{"matches pass", "email", models.OpMatches, `^creator@.*\.com$`, true},
		{"matches fail", "email", models.OpMatches, `^admin@`, false},
		{"matches invalid pattern is false", "email", models.OpMatches, `([`, false},
		{"unknown operator is false", "status", models.Operator("bogus"), "pending", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalOne(t, ctx, tt.field, tt.op, tt.value))
		})
	}
}

func TestEvaluate_InNotInAreComplements(t *testing.T) {
	ctx := testContext()
	list := []any{"pending", "draft"}

	assert.NotEqual(t,
		evalOne(t, ctx, "status", models.OpIn, list),
		evalOne(t, ctx, "status", models.OpNotIn, list))
}

func TestEvaluate_ExistsNotExistsAreComplements(t *testing.T) {
	ctx := testContext()

	for _, field := range []string{"status", "missingField"} {
		assert.NotEqual(t,
			evalOne(t, ctx, field, models.OpExists, nil),
			evalOne(t, ctx, field, models.OpNotExists, nil), field)
	}
}

func TestEvaluate_NowSentinel(t *testing.T) {
	ctx := fields.Context{
		Entity: models.Entity{
			"touchedAt": time.Now().Format(time.RFC3339),
			"dueDate":   time.Now().Add(-48 * time.Hour).Format(time.RFC3339),
		},
	}

	assert.True(t, evalOne(t, ctx, "touchedAt", models.OpEquals, "now"))
	assert.False(t, evalOne(t, ctx, "dueDate", models.OpEquals, "now"))
	assert.True(t, evalOne(t, ctx, "dueDate", models.OpLessThan, "now"))
	assert.False(t, evalOne(t, ctx, "dueDate", models.OpGreaterThan, "now"))
}

func TestEvaluate_DateComparison(t *testing.T) {
	ctx := fields.Context{
		Entity: models.Entity{"dueDate": "2026-09-01T00:00:00Z"},
	}

	assert.True(t, evalOne(t, ctx, "dueDate", models.OpGreaterThan, "2026-08-01T00:00:00Z"))
	assert.False(t, evalOne(t, ctx, "dueDate", models.OpLessThan, "2026-08-01T00:00:00Z"))
}

func TestEvaluate_NullAwareEquality(t *testing.T) {
	ctx := fields.Context{Entity: models.Entity{"assignee": nil}}

	assert.False(t, evalOne(t, ctx, "assignee", models.OpEquals, "someone"))
	assert.True(t, evalOne(t, ctx, "assignee", models.OpNotEquals, "someone"))
}

func TestEvaluate_EmptyConditionListPasses(t *testing.T) {
	eval := Evaluate(nil, fields.Context{})
	assert.True(t, eval.Passed)
	assert.Empty(t, eval.Results)
}

func TestEvaluate_AndSemantics(t *testing.T) {
	ctx := testContext()

	eval := Evaluate([]models.Condition{
		{Field: "status", Operator: models.OpEquals, Value: "pending"},
		{Field: "hoursInStatus", Operator: models.OpGreaterThan, Value: float64(100)},
	}, ctx)

	assert.False(t, eval.Passed)
	assert.Len(t, eval.Results, 2)
	assert.True(t, eval.Results[0].Passed)
	assert.False(t, eval.Results[1].Passed)
}
