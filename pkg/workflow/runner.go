package workflow

import (
	"context"

	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/protocol"
)

// runActions executes the rule's actions sequentially. A failed action
// is recorded and the sequence continues, except update_status: later
// actions usually assume the transition happened, so its failure halts
// the rest.
func (e *Engine) runActions(ctx context.Context, rule *models.WorkflowRule, execution *models.WorkflowExecution, fctx fields.Context) []models.ActionResult {
	ectx := protocol.ExecContext{
		TenantID:    e.tenantID,
		RuleID:      rule.ID,
		ExecutionID: execution.ID,
		EntityType:  execution.EntityType,
		Entity:      fctx.Entity,
		Fields:      fctx,
	}

	results := make([]models.ActionResult, 0, len(rule.Actions))

	for _, item := range rule.Actions {
		result := e.runAction(ctx, item, ectx)
		results = append(results, result)

		if !result.Success && item.Type == models.ActionUpdateStatus {
			e.logger.WarnContext(ctx, "Status update failed, halting remaining actions",
				"rule_id", rule.ID,
				"execution_id", execution.ID,
				"error", result.Error)

			break
		}
	}

	return results
}

func (e *Engine) runAction(ctx context.Context, item models.ActionItem, ectx protocol.ExecContext) models.ActionResult {
	action, err := e.registry.CreateAction(item.Type, item.Config)
	if err != nil {
		return models.Failure(item.Type, err.Error())
	}

	output, err := action.Execute(ctx, ectx, e.logger)
	if err != nil {
		e.logger.WarnContext(ctx, "Action failed",
			"action_type", item.Type,
			"execution_id", ectx.ExecutionID,
			"error", err)

		return models.Failure(item.Type, err.Error())
	}

	return models.SuccessResult(item.Type, output)
}
