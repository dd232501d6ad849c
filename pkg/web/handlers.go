// Package web provides HTTP handlers for the rule engine API: rule
// inspection, approval decisions, manual triggers and scheduled-action
// cancellation. Rule authoring lives in the administrative service.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/workflow"
)

type APIHandlers struct {
	manager   *workflow.Manager
	persist   persistence.Persistence
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(
	manager *workflow.Manager,
	persist persistence.Persistence,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		manager:   manager,
		persist:   persist,
		validator: validator,
		logger:    logger,
	}
}

// Register mounts every tenant-scoped route plus the health endpoint.
func (h *APIHandlers) Register(app *fiber.App) {
	tenant := app.Group("/tenants/:tenantId")
	tenant.Get("/rules", h.GetRules)
	tenant.Post("/rules/reload", h.ReloadRules)
	tenant.Get("/approvals", h.GetPendingApprovals)
	tenant.Post("/executions/:id/approve", h.ApproveExecution)
	tenant.Post("/executions/:id/reject", h.RejectExecution)
	tenant.Post("/trigger", h.TriggerRule)
	tenant.Post("/scheduled-actions/:id/cancel", h.CancelScheduledAction)

	app.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) engine(c fiber.Ctx) (*workflow.Engine, error) {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return nil, badRequest(c, "Tenant ID is required")
	}

	engine, err := h.manager.Engine(c.Context(), tenantID)
	if err != nil {
		return nil, internalError(c, err)
	}

	return engine, nil
}

func (h *APIHandlers) GetRules(c fiber.Ctx) error {
	engine, err := h.engine(c)
	if engine == nil {
		return err
	}

	return c.JSON(fiber.Map{"rules": engine.Rules()})
}

func (h *APIHandlers) ReloadRules(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return badRequest(c, "Tenant ID is required")
	}

	if err := h.manager.ReloadRules(c.Context(), tenantID); err != nil {
		return internalError(c, err)
	}

	engine, err := h.manager.Engine(c.Context(), tenantID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"reloaded": true, "rule_count": len(engine.Rules())})
}

func (h *APIHandlers) GetPendingApprovals(c fiber.Ctx) error {
	engine, err := h.engine(c)
	if engine == nil {
		return err
	}

	pending, err := engine.PendingApprovals(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"approvals": pending})
}

func (h *APIHandlers) ApproveExecution(c fiber.Ctx) error {
	engine, err := h.engine(c)
	if engine == nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	var req ApproveExecutionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	execution, err := engine.ApproveExecution(c.Context(), id, req.ApprovedBy)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) RejectExecution(c fiber.Ctx) error {
	engine, err := h.engine(c)
	if engine == nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	var req RejectExecutionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	execution, err := engine.RejectExecution(c.Context(), id, req.RejectedBy, req.Reason)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) TriggerRule(c fiber.Ctx) error {
	engine, err := h.engine(c)
	if engine == nil {
		return err
	}

	var req TriggerRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	execution, err := engine.TriggerManually(c.Context(), req.RuleID, req.EntityType, req.EntityID, req.User, req.BypassChecks)
	if err != nil {
		switch {
		case persistence.IsRuleNotFound(err), persistence.IsEntityNotFound(err):
			return handleEngineError(c, err)
		default:
			// Inactive rules, wrong trigger type, entity-type mismatch.
			return badRequest(c, err.Error())
		}
	}

	// The limiter can swallow the firing without creating a record.
	if execution == nil {
		return c.JSON(fiber.Map{"fired": false})
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) CancelScheduledAction(c fiber.Ctx) error {
	engine, err := h.engine(c)
	if engine == nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Scheduled action ID is required")
	}

	var req CancelScheduledActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	cancelled, err := engine.CancelScheduledAction(c.Context(), id, req.Reason)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(cancelled)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	repoErr := h.persist.HealthCheck(c.Context())
	if repoErr != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError

		h.logger.WarnContext(c.Context(), "Health check failed", "error", repoErr)
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}
