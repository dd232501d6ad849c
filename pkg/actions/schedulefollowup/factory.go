package schedulefollowup

import (
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct {
	scheduled persistence.ScheduledActionRepository
}

func NewActionFactory(scheduled persistence.ScheduledActionRepository) *ActionFactory {
	return &ActionFactory{scheduled: scheduled}
}

func (*ActionFactory) ID() string {
	return "schedule_followup"
}

func (*ActionFactory) Name() string {
	return "Schedule Followup"
}

func (*ActionFactory) Description() string {
	return "Defers a nested action to a future time, with optional cancellation conditions re-checked at fire time."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.scheduled)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"delayHours": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Hours to wait before firing.",
			},
			"delayDays": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Days to wait before firing. Added to delayHours.",
			},
			"action": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type":   map[string]any{"type": "string"},
					"config": map[string]any{"type": "object"},
				},
				"required":    []any{"type"},
				"description": "The deferred action. Nesting another schedule_followup is rejected.",
			},
			"cancelIf": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field":    map[string]any{"type": "string"},
						"operator": map[string]any{"type": "string"},
						"value":    map[string]any{},
					},
					"required": []any{"field", "operator"},
				},
				"description": "Conditions evaluated against fresh entity state at fire time. Any match cancels.",
			},
		},
		"required": []any{"action"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
