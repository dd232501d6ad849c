package webhook

import (
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "webhook"
}

func (*ActionFactory) Name() string {
	return "Webhook"
}

func (*ActionFactory) Description() string {
	return "Posts the firing context as JSON to an external URL."
}

func (*ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Destination URL. Supports {token} interpolation.",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Extra request headers. Values support {token} interpolation.",
			},
			"includeEntity": map[string]any{
				"type":        "boolean",
				"description": "Whether the payload carries the full entity snapshot. Defaults to true.",
			},
			"timeoutSeconds": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Request timeout. Defaults to 30.",
			},
		},
		"required": []any{"url"},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
