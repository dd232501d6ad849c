package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleEngineError maps engine and persistence errors onto problem
// responses.
func handleEngineError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsExecutionNotFound(err):
		return notFound(c, "execution not found")

	case persistence.IsScheduledActionNotFound(err):
		return notFound(c, "scheduled action not found")

	case persistence.IsRuleNotFound(err):
		return notFound(c, "rule not found")

	case persistence.IsEntityNotFound(err):
		return notFound(c, "entity not found")

	case errors.Is(err, workflow.ErrNotPendingApproval):
		return conflict(c, err.Error())

	case errors.Is(err, workflow.ErrNotPending):
		return conflict(c, err.Error())

	default:
		return internalError(c, err)
	}
}
