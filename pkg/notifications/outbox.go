package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/lumahq/automation/pkg/eventbus"
	"github.com/lumahq/automation/pkg/events"
	"github.com/lumahq/automation/pkg/protocol"
)

// Outbox hands outbound messages and in-app notifications to their
// owning services over the event bus. The engine never delivers either
// itself.
type Outbox struct {
	publisher eventbus.EventBus
	logger    *slog.Logger
}

func NewOutbox(publisher eventbus.EventBus, logger *slog.Logger) *Outbox {
	return &Outbox{
		publisher: publisher,
		logger:    logger.With("module", "outbox"),
	}
}

func (o *Outbox) Enqueue(ctx context.Context, msg protocol.OutboundMessage) error {
	event := events.OutboundMessageQueued{
		BaseEvent: o.baseEvent(events.OutboundMessageQueuedEvent, msg.TenantID),
		To:        msg.To,
		Subject:   msg.Subject,
		Body:      msg.Body,

		EntityType: msg.EntityType,
		EntityID:   msg.EntityID,
	}

	if err := o.publisher.Publish(ctx, msg.TenantID, event); err != nil {
		return err
	}

	o.logger.InfoContext(ctx, "Queued outbound message",
		"tenant_id", msg.TenantID,
		"to", msg.To)

	return nil
}

func (o *Outbox) CreateNotification(ctx context.Context, n protocol.Notification) error {
	event := events.NotificationCreated{
		BaseEvent: o.baseEvent(events.NotificationCreatedEvent, n.TenantID),
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,

		EntityType: n.EntityType,
		EntityID:   n.EntityID,
	}

	if err := o.publisher.Publish(ctx, n.TenantID, event); err != nil {
		return err
	}

	o.logger.InfoContext(ctx, "Created notification",
		"tenant_id", n.TenantID,
		"user_id", n.UserID)

	return nil
}

func (o *Outbox) baseEvent(eventType events.EventType, tenantID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        o.publisher.GenerateID(),
		Type:      eventType,
		TenantID:  tenantID,
		Timestamp: time.Now().UTC(),
	}
}

var _ protocol.Mailer = (*Outbox)(nil)
var _ protocol.Notifier = (*Outbox)(nil)
