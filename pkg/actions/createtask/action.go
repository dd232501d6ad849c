// Package createtask implements the create_task action: it creates a
// follow-up task linked to the triggering entity, optionally assigned
// and optionally due a number of days out.
package createtask

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/template"
)

type Action struct {
	Title       string
	Description string
	AssignTo    string
	DueInDays   int

	tasks protocol.TaskCreator
}

func NewAction(config map[string]any, tasks protocol.TaskCreator) (*Action, error) {
	title, _ := config["title"].(string)
	if title == "" {
		return nil, fmt.Errorf("create_task requires 'title'")
	}

	description, _ := config["description"].(string)
	assignTo, _ := config["assignTo"].(string)

	dueInDays := 0
	if v, ok := config["dueInDays"].(float64); ok {
		dueInDays = int(v)
	}

	return &Action{
		Title:       title,
		Description: description,
		AssignTo:    assignTo,
		DueInDays:   dueInDays,
		tasks:       tasks,
	}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "create_task")

	data := ectx.TemplateData()

	task := protocol.NewTask{
		TenantID:    ectx.TenantID,
		Title:       template.Render(a.Title, data),
		Description: template.Render(a.Description, data),
		EntityType:  ectx.EntityType,
		EntityID:    ectx.Entity.ID(),
	}

	if a.AssignTo != "" {
		assignee, err := resolveAssignee(a.AssignTo, ectx.Entity)
		if err != nil {
			return nil, err
		}

		task.AssigneeID = assignee
	}

	if a.DueInDays > 0 {
		due := time.Now().UTC().Add(time.Duration(a.DueInDays) * 24 * time.Hour)
		task.DueAt = &due
	}

	taskID, err := a.tasks.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	logger.InfoContext(ctx, "Created task",
		"task_id", taskID,
		"entity_id", ectx.Entity.ID(),
		"assignee", task.AssigneeID)

	return map[string]any{
		"task_id":  taskID,
		"title":    task.Title,
		"assignee": task.AssigneeID,
	}, nil
}

// resolveAssignee maps the assignTo config to a user id. The role names
// resolve through the entity's ownership columns; anything else is taken
// as a literal user id.
func resolveAssignee(assignTo string, entity models.Entity) (string, error) {
	var keys []string

	switch assignTo {
	case "owner":
		keys = []string{"ownerId", "owner_id"}
	case "coordinator":
		keys = []string{"coordinatorId", "coordinator_id"}
	default:
		return assignTo, nil
	}

	v, ok := entity.First(keys...)
	if !ok {
		return "", fmt.Errorf("entity has no %s to assign to", assignTo)
	}

	return fmt.Sprintf("%v", v), nil
}
