package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortRules(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rules := []*WorkflowRule{
		{ID: "a", Priority: 5, CreatedAt: base},
		{ID: "b", Priority: 20, CreatedAt: base.Add(time.Hour)},
		{ID: "c", Priority: 10, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "d", Priority: 10, CreatedAt: base.Add(time.Minute)},
	}

	SortRules(rules)

	got := make([]string, 0, len(rules))
	for _, r := range rules {
		got = append(got, r.ID)
	}

	assert.Equal(t, []string{"b", "d", "c", "a"}, got)
}

func TestWorkflowRule_AppliesTo(t *testing.T) {
	all := &WorkflowRule{}
	assert.True(t, all.AppliesTo("project"))
	assert.True(t, all.AppliesTo("whatever"))

	scoped := &WorkflowRule{EntityTypes: []string{"project", "task"}}
	assert.True(t, scoped.AppliesTo("task"))
	assert.False(t, scoped.AppliesTo("order"))
}

func TestTriggerConfig_ElapsedThresholdHours(t *testing.T) {
	c := TriggerConfig{Hours: 6, Days: 2}
	assert.InDelta(t, 54.0, c.ElapsedThresholdHours(), 0.001)
}

func TestClassifyActionResults(t *testing.T) {
	ok := ActionResult{Type: ActionWebhook, Success: true}
	bad := ActionResult{Type: ActionWebhook, Success: false, Error: "boom"}

	tests := []struct {
		name    string
		results []ActionResult
		want    ExecutionResult
	}{
		{"empty", nil, ResultSuccess},
		{"all succeeded", []ActionResult{ok, ok}, ResultSuccess},
		{"none succeeded", []ActionResult{bad, bad}, ResultFailed},
		{"mixed", []ActionResult{ok, bad}, ResultPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyActionResults(tt.results))
		})
	}
}

func TestEntity_First(t *testing.T) {
	e := Entity{"created_at": "2026-01-01T00:00:00Z", "name": "John Doe"}

	v, ok := e.First("createdAt", "created_at")
	assert.True(t, ok)
	assert.Equal(t, "2026-01-01T00:00:00Z", v)

	_, ok = e.First("missing", "also_missing")
	assert.False(t, ok)

	assert.Equal(t, "John Doe", e.String("name"))
	assert.Equal(t, "", e.String("missing"))
}
