// Package generatereport implements the generate_report action. Report
// rendering runs in a separate reporting pipeline; this action records
// the acknowledged request so the pipeline can pick it up.
package generatereport

import (
	"context"
	"log/slog"

	"github.com/lumahq/automation/pkg/protocol"
)

type Action struct {
	ReportType string
	Params     map[string]any
}

func NewAction(config map[string]any) (*Action, error) {
	reportType, _ := config["reportType"].(string)
	if reportType == "" {
		reportType = "summary"
	}

	params, _ := config["params"].(map[string]any)

	return &Action{ReportType: reportType, Params: params}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "generate_report")

	logger.InfoContext(ctx, "Acknowledged report request",
		"report_type", a.ReportType,
		"entity_type", ectx.EntityType,
		"entity_id", ectx.Entity.ID())

	return map[string]any{
		"report_type":  a.ReportType,
		"params":       a.Params,
		"acknowledged": true,
	}, nil
}
