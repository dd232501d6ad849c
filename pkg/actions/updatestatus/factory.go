package updatestatus

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
	return "update_status"
}

func (*ActionFactory) Name() string {
	return "Update Status"
}

func (*ActionFactory) Description() string {
	return "Transitions the entity to a new status. On failure the remaining rule actions are skipped."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.entities)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"newStatus": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Status value written to the entity.",
			},
		},
		"required": []any{"newStatus"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
