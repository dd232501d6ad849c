package sendmessage

import (
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct {
	mailer protocol.Mailer
}

func NewActionFactory(mailer protocol.Mailer) *ActionFactory {
	return &ActionFactory{mailer: mailer}
}

func (*ActionFactory) ID() string {
	return "send_message"
}

func (*ActionFactory) Name() string {
	return "Send Message"
}

func (*ActionFactory) Description() string {
	return "Sends an interpolated email to the entity's contact, its assignee, or a literal address."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.mailer)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template": map[string]any{
				"type":        "string",
				"description": "Message body. Supports {token} interpolation.",
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Message subject. Supports {token} interpolation.",
			},
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient: 'contact', 'assignee', or a literal email address.",
				"default":     "contact",
			},
		},
		"required": []any{"template"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
