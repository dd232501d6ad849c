// Package suggestaction implements the suggest_action action: an
// approval-style suggestion with a list of options for a human to pick
// from. Like slack_notify, storage absence never fails the action.
package suggestaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/template"
)

type Action struct {
	Message string
	Options []string

	store protocol.PendingNotificationStore
}

func NewAction(config map[string]any, store protocol.PendingNotificationStore) (*Action, error) {
	message, _ := config["message"].(string)
	if message == "" {
		return nil, fmt.Errorf("suggest_action requires 'message'")
	}

	var options []string

	if raw, ok := config["options"].([]any); ok {
		for _, o := range raw {
			options = append(options, fmt.Sprintf("%v", o))
		}
	}

	return &Action{Message: message, Options: options, store: store}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "suggest_action")

	message := template.Render(a.Message, ectx.TemplateData())

	if a.store == nil {
		logger.WarnContext(ctx, "No pending-notification store configured, dropping suggestion")

		return map[string]any{"message": message, "stored": false}, nil
	}

	err := a.store.Push(ctx, protocol.PendingNotification{
		TenantID:   ectx.TenantID,
		Kind:       "suggestion",
		Message:    message,
		Options:    a.Options,
		EntityType: ectx.EntityType,
		EntityID:   ectx.Entity.ID(),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to store suggestion", "error", err)

		return map[string]any{"message": message, "stored": false}, nil
	}

	return map[string]any{"message": message, "options": a.Options, "stored": true}, nil
}
