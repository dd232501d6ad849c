package sendnotification

import (
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct {
	notifier protocol.Notifier
}

func NewActionFactory(notifier protocol.Notifier) *ActionFactory {
	return &ActionFactory{notifier: notifier}
}

func (*ActionFactory) ID() string {
	return "send_notification"
}

func (*ActionFactory) Name() string {
	return "Send Notification"
}

func (*ActionFactory) Description() string {
	return "Creates an internal notification for the entity's assignee, its owner, or a literal user id."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.notifier)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient: 'assignee', 'owner', or a literal user id.",
			},
			"title":   map[string]any{"type": "string"},
			"message": map[string]any{"type": "string"},
		},
		"required": []any{"to"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
