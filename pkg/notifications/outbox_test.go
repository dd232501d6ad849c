package notifications_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumahq/automation/pkg/eventbus"
	"github.com/lumahq/automation/pkg/eventbus/gochannel"
	"github.com/lumahq/automation/pkg/events"
	"github.com/lumahq/automation/pkg/mocks"
	"github.com/lumahq/automation/pkg/notifications"
	"github.com/lumahq/automation/pkg/protocol"
)

func newOutboxBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	return eventbus.NewWatermillEventBus(pub, sub, events.OutboundTopic)
}

func TestOutbox_Enqueue(t *testing.T) {
	bus := newOutboxBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.OutboundMessageQueued, 1)

	err := bus.Handle(events.OutboundMessageQueuedEvent, func(_ context.Context, event interface{}) error {
		queued, ok := event.(*events.OutboundMessageQueued)
		require.True(t, ok)

		received <- queued

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	outbox := notifications.NewOutbox(bus, slog.Default())

	require.NoError(t, outbox.Enqueue(ctx, protocol.OutboundMessage{
		TenantID:   "tenant-1",
		To:         "creator@example.com",
		Subject:    "Checking in",
		Body:       "Project Atlas needs attention",
		EntityType: "project",
		EntityID:   "proj-1",
	}))

	select {
	case got := <-received:
		assert.Equal(t, "tenant-1", got.TenantID)
		assert.Equal(t, "creator@example.com", got.To)
		assert.Equal(t, "proj-1", got.EntityID)
		assert.NotEmpty(t, got.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestOutbox_CreateNotification(t *testing.T) {
	bus := newOutboxBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.NotificationCreated, 1)

	err := bus.Handle(events.NotificationCreatedEvent, func(_ context.Context, event interface{}) error {
		created, ok := event.(*events.NotificationCreated)
		require.True(t, ok)

		received <- created

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	outbox := notifications.NewOutbox(bus, slog.Default())

	require.NoError(t, outbox.CreateNotification(ctx, protocol.Notification{
		TenantID: "tenant-1",
		UserID:   "user-7",
		Title:    "Stale project",
		Body:     "Atlas sat in draft for three days",
	}))

	select {
	case got := <-received:
		assert.Equal(t, "user-7", got.UserID)
		assert.Equal(t, "Stale project", got.Title)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestOutbox_PublishFailurePropagates(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("evt-1")
	bus.On("Publish", mock.Anything, "tenant-1", mock.Anything).Return(fmt.Errorf("broker unavailable"))

	outbox := notifications.NewOutbox(bus, slog.Default())

	err := outbox.Enqueue(context.Background(), protocol.OutboundMessage{
		TenantID: "tenant-1",
		To:       "creator@example.com",
		Body:     "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}
