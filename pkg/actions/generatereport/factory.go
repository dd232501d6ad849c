package generatereport

import (
	"github.com/lumahq/automation/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "generate_report"
}

func (*ActionFactory) Name() string {
	return "Generate Report"
}

func (*ActionFactory) Description() string {
	return "Acknowledges a report request for the reporting pipeline."
}

func (*ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reportType": map[string]any{
				"type":        "string",
				"description": "Report kind. Defaults to 'summary'.",
			},
			"params": map[string]any{
				"type":        "object",
				"description": "Opaque parameters forwarded to the reporting pipeline.",
			},
		},
	}
}

var _ protocol.ActionFactory = (*ActionFactory)(nil)
