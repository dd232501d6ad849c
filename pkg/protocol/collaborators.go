package protocol

import (
	"context"
	"time"
)

// OutboundMessage is an email handed to the communications system.
type OutboundMessage struct {
	TenantID   string `json:"tenant_id"`
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
}

// Mailer enqueues outbound messages. Delivery is asynchronous; Enqueue
// only guarantees the message was accepted.
type Mailer interface {
	Enqueue(ctx context.Context, msg OutboundMessage) error
}

// Notification is an in-app notification for a platform user.
type Notification struct {
	TenantID   string `json:"tenant_id"`
	UserID     string `json:"user_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
}

// Notifier creates internal notification records.
type Notifier interface {
	CreateNotification(ctx context.Context, n Notification) error
}

// NewTask describes a task record to create.
type NewTask struct {
	TenantID    string     `json:"tenant_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	EntityType  string     `json:"entity_type,omitempty"`
	EntityID    string     `json:"entity_id,omitempty"`
}

// TaskCreator creates task records and returns the new task id.
type TaskCreator interface {
	CreateTask(ctx context.Context, task NewTask) (string, error)
}

// PendingNotification is a slack-style notification or action suggestion
// waiting for a human to pick it up.
type PendingNotification struct {
	TenantID   string    `json:"tenant_id"`
	Kind       string    `json:"kind"` // "slack" or "suggestion"
	Message    string    `json:"message"`
	Options    []string  `json:"options,omitempty"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PendingNotificationStore persists pending notifications best-effort.
// Implementations may be absent at runtime; callers treat a nil store as
// a logged no-op, never as an action failure.
type PendingNotificationStore interface {
	Push(ctx context.Context, n PendingNotification) error
}
