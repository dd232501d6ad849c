// Package slacknotify implements the slack_notify action: a best-effort
// push into the pending-notification store. Storage absence or failure is
// logged, never surfaced as an action failure.
package slacknotify

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

	store protocol.PendingNotificationStore
}

func NewAction(config map[string]any, store protocol.PendingNotificationStore) (*Action, error) {
	message, _ := config["message"].(string)
	if message == "" {
		return nil, fmt.Errorf("slack_notify requires 'message'")
	}

	return &Action{Message: message, store: store}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "slack_notify")

	message := template.Render(a.Message, ectx.TemplateData())

	if a.store == nil {
		logger.WarnContext(ctx, "No pending-notification store configured, dropping message")

		return map[string]any{"message": message, "stored": false}, nil
	}

	err := a.store.Push(ctx, protocol.PendingNotification{
		TenantID:   ectx.TenantID,
		Kind:       "slack",
		Message:    message,
		EntityType: ectx.EntityType,
		EntityID:   ectx.Entity.ID(),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to store pending notification", "error", err)

		return map[string]any{"message": message, "stored": false}, nil
	}

	return map[string]any{"message": message, "stored": true}, nil
}
