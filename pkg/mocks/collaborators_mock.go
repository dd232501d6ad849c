package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lumahq/automation/pkg/protocol"
)

// MockMailer is a mock implementation of the protocol.Mailer interface.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Enqueue(ctx context.Context, msg protocol.OutboundMessage) error {
	args := m.Called(ctx, msg)

	return args.Error(0)
}

// MockNotifier is a mock implementation of the protocol.Notifier
// interface.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) CreateNotification(ctx context.Context, n protocol.Notification) error {
	args := m.Called(ctx, n)

	return args.Error(0)
}

// MockTaskCreator is a mock implementation of the protocol.TaskCreator
// interface.
type MockTaskCreator struct {
	mock.Mock
}

func (m *MockTaskCreator) CreateTask(ctx context.Context, task protocol.NewTask) (string, error) {
	args := m.Called(ctx, task)

	return args.String(0), args.Error(1)
}

// MockPendingNotificationStore is a mock implementation of the
// protocol.PendingNotificationStore interface.
type MockPendingNotificationStore struct {
	mock.Mock
}

func (m *MockPendingNotificationStore) Push(ctx context.Context, n protocol.PendingNotification) error {
	args := m.Called(ctx, n)

	return args.Error(0)
}
