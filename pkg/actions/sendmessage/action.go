// Package sendmessage implements the send_message action: an interpolated
// email enqueued to the communications system.
package sendmessage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/template"
)

// Action enqueues one outbound message per firing.
type Action struct {
	Template string
	Subject  string
	To       string

	mailer protocol.Mailer
}

func NewAction(config map[string]any, mailer protocol.Mailer) (*Action, error) {
	tmpl, _ := config["template"].(string)
	if tmpl == "" {
		return nil, fmt.Errorf("send_message requires 'template'")
	}

	subject, _ := config["subject"].(string)

	to, _ := config["to"].(string)
	if to == "" {
		to = "contact"
	}

	return &Action{
		Template: tmpl,
		Subject:  subject,
		To:       to,
		mailer:   mailer,
	}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "send_message")

	address := a.resolveAddress(ectx)
	if address == "" {
		return nil, fmt.Errorf("no resolvable recipient address for '%s'", a.To)
	}

	data := ectx.TemplateData()
	body := template.Render(a.Template, data)
	subject := template.Render(a.Subject, data)

	err := a.mailer.Enqueue(ctx, protocol.OutboundMessage{
		TenantID:   ectx.TenantID,
		To:         address,
		Subject:    subject,
		Body:       body,
		EntityType: ectx.EntityType,
		EntityID:   ectx.Entity.ID(),
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue message: %w", err)
	}

	logger.InfoContext(ctx, "Enqueued message", "to", address)

	return map[string]any{"to": address, "subject": subject}, nil
}

// resolveAddress maps the configured recipient to an email address:
// "contact" and "assignee" read the entity, anything with an @ is a
// literal address.
func (a *Action) resolveAddress(ectx protocol.ExecContext) string {
	switch a.To {
	case "contact":
		return ectx.Entity.String("email")
	case "assignee":
		if v, ok := ectx.Entity.First("assigneeEmail", "assignee_email"); ok {
			return fmt.Sprintf("%v", v)
		}

		return ""
	default:
		if strings.Contains(a.To, "@") {
			return a.To
		}

		return ""
	}
}
