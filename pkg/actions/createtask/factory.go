package createtask

import (
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct {
	tasks protocol.TaskCreator
}

func NewActionFactory(tasks protocol.TaskCreator) *ActionFactory {
	return &ActionFactory{tasks: tasks}
}

func (*ActionFactory) ID() string {
	return "create_task"
}

func (*ActionFactory) Name() string {
	return "Create Task"
}

func (*ActionFactory) Description() string {
	return "Creates a follow-up task linked to the triggering entity."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.tasks)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Task title. Supports {token} interpolation.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Task body. Supports {token} interpolation.",
			},
			"assignTo": map[string]any{
				"type":        "string",
				"description": "'owner', 'coordinator', or a literal user id.",
			},
			"dueInDays": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Days from now until the task is due. Zero leaves it open.",
			},
		},
		"required": []any{"title"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
