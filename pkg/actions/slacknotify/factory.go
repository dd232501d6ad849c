package slacknotify

import (
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct {
	store protocol.PendingNotificationStore
}

// NewActionFactory accepts a nil store; the action then degrades to a
// logged no-op.
func NewActionFactory(store protocol.PendingNotificationStore) *ActionFactory {
	return &ActionFactory{store: store}
}

func (*ActionFactory) ID() string {
	return "slack_notify"
}

func (*ActionFactory) Name() string {
	return "Slack Notify"
}

func (*ActionFactory) Description() string {
	return "Queues a slack-style notification for the operations channel. Best effort."
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
				"description": "Notification text. Supports {token} interpolation.",
			},
		},
		"required": []any{"message"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
