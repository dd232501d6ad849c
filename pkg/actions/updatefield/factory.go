package updatefield

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
	return "update_field"
}

func (*ActionFactory) Name() string {
	return "Update Field"
}

func (*ActionFactory) Description() string {
	return "Writes a value to an entity field. Dotted names merge into the metadata document."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.entities)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Column name, or dotted path into the metadata document.",
			},
			"value": map[string]any{
				"description": "Value to write. Strings support {token} interpolation.",
			},
		},
		"required": []any{"field"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
