// Package events defines the event types the engine consumes from and
// publishes to the platform event stream.
package events

import (
	"time"
)

type EventType string

// Kafka topics.
const (
	EntityTopic    = "automation.entity.events"
	ExecutionTopic = "automation.rule.executions"
	OutboundTopic  = "automation.outbox"
)

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Inbound events the engine reacts to.
	EntityStatusChangedEvent  EventType = "entity.status_changed"
	EntityEventOccurredEvent  EventType = "entity.event"
	RulesReloadRequestedEvent EventType = "rules.reload_requested"

	// Outbound events the engine publishes after a firing attempt.
	ExecutionRecordedEvent EventType = "execution.recorded"

	// Outbox events consumed by the communications and tasks services.
	OutboundMessageQueuedEvent EventType = "outbox.message_queued"
	NotificationCreatedEvent   EventType = "outbox.notification_created"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	TenantID  string         `json:"tenant_id"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EntityStatusChanged signals that the host application moved an entity
// between statuses.
type EntityStatusChanged struct {
	BaseEvent

	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	FromStatus string         `json:"from_status"`
	ToStatus   string         `json:"to_status"`
	User       map[string]any `json:"user,omitempty"`
}

func (e EntityStatusChanged) GetType() EventType {
	return EntityStatusChangedEvent
}

// EntityEventOccurred signals a named domain event on an entity.
type EntityEventOccurred struct {
	BaseEvent

	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	EventName  string         `json:"event_name"`
	Payload    map[string]any `json:"payload,omitempty"`
}

func (e EntityEventOccurred) GetType() EventType {
	return EntityEventOccurredEvent
}

// RulesReloadRequested asks the engine to refresh one tenant's rules,
// published by the administrative surface after rule edits.
type RulesReloadRequested struct {
	BaseEvent
}

func (e RulesReloadRequested) GetType() EventType {
	return RulesReloadRequestedEvent
}

// ExecutionRecorded is published after every firing attempt that
// produced an audit record.
type ExecutionRecorded struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	RuleID      string `json:"rule_id"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Result      string `json:"result"`
}

func (e ExecutionRecorded) GetType() EventType {
	return ExecutionRecordedEvent
}

// OutboundMessageQueued hands an email produced by a send_message action
// to the communications service.
type OutboundMessageQueued struct {
	BaseEvent

	To         string `json:"to"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
}

func (e OutboundMessageQueued) GetType() EventType {
	return OutboundMessageQueuedEvent
}

// NotificationCreated hands an in-app notification produced by a
// send_notification action to the notifications service.
type NotificationCreated struct {
	BaseEvent

	UserID     string `json:"user_id"`
	Title      string `json:"title,omitempty"`
	Body       string `json:"body"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
}

func (e NotificationCreated) GetType() EventType {
	return NotificationCreatedEvent
}
