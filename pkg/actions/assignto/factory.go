package assignto

import (
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct {
	entities persistence.EntityStore
}

func NewActionFactory(entities persistence.EntityStore) *ActionFactory {
	return &ActionFactory{entities: entities}
}

func (*ActionFactory) ID() string {
	return "assign_to"
}

func (*ActionFactory) Name() string {
	return "Assign To"
}

func (*ActionFactory) Description() string {
	return "Sets the entity's assignee to a user id or to the holder of an ownership role."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.entities)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId": map[string]any{
				"type":        "string",
				"description": "Literal user id. Takes precedence over role.",
			},
			"role": map[string]any{
				"type":        "string",
				"enum":        []any{"owner", "coordinator"},
				"description": "Ownership role resolved from the entity.",
			},
		},
		"anyOf": []any{
			map[string]any{"required": []any{"userId"}},
			map[string]any{"required": []any{"role"}},
		},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
