// Package sendnotification implements the send_notification action: an
// internal notification record for a platform user.
package sendnotification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/template"
)

type Action struct {
	To      string
	Title   string
	Message string

	notifier protocol.Notifier
}

func NewAction(config map[string]any, notifier protocol.Notifier) (*Action, error) {
	to, _ := config["to"].(string)
	if to == "" {
		return nil, fmt.Errorf("send_notification requires 'to'")
	}

	title, _ := config["title"].(string)
	message, _ := config["message"].(string)

	return &Action{To: to, Title: title, Message: message, notifier: notifier}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "send_notification")

	userID := a.resolveUserID(ectx)
	if userID == "" {
		return nil, fmt.Errorf("no resolvable notification recipient for '%s'", a.To)
	}

	data := ectx.TemplateData()

	err := a.notifier.CreateNotification(ctx, protocol.Notification{
		TenantID:   ectx.TenantID,
		UserID:     userID,
		Title:      template.Render(a.Title, data),
		Body:       template.Render(a.Message, data),
		EntityType: ectx.EntityType,
		EntityID:   ectx.Entity.ID(),
	})
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	logger.InfoContext(ctx, "Created notification", "user_id", userID)

	return map[string]any{"user_id": userID}, nil
}

// resolveUserID maps "assignee" and "owner" through the entity; anything
// else is treated as a literal user id.
func (a *Action) resolveUserID(ectx protocol.ExecContext) string {
	switch a.To {
	case "assignee":
		if v, ok := ectx.Entity.First("assigneeId", "assignee_id"); ok {
			return fmt.Sprintf("%v", v)
		}

		return ""
	case "owner":
		if v, ok := ectx.Entity.First("ownerId", "owner_id"); ok {
			return fmt.Sprintf("%v", v)
		}

		return ""
	default:
		return a.To
	}
}
