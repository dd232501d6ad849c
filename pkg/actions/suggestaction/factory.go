package suggestaction

import (
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct {
	store protocol.PendingNotificationStore
}

func NewActionFactory(store protocol.PendingNotificationStore) *ActionFactory {
	return &ActionFactory{store: store}
}

func (*ActionFactory) ID() string {
	return "suggest_action"
}

func (*ActionFactory) Name() string {
	return "Suggest Action"
}

func (*ActionFactory) Description() string {
	return "Queues an action suggestion with options for a human to choose from. Best effort."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.store)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Suggestion text. Supports {token} interpolation.",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Choices presented to the reviewer.",
			},
		},
		"required": []any{"message"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
