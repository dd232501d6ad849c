package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lumahq/automation/pkg/models"
)

// MockEntityStore is a mock implementation of the
// persistence.EntityStore interface.
type MockEntityStore struct {
	mock.Mock
}

func (m *MockEntityStore) Fetch(ctx context.Context, tenantID, entityType, entityID string) (models.Entity, error) {
	args := m.Called(ctx, tenantID, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(models.Entity), args.Error(1)
}

func (m *MockEntityStore) List(ctx context.Context, tenantID, entityType string) ([]models.Entity, error) {
	args := m.Called(ctx, tenantID, entityType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Entity), args.Error(1)
}

func (m *MockEntityStore) UpdateStatus(ctx context.Context, tenantID, entityType, entityID, newStatus string) error {
	args := m.Called(ctx, tenantID, entityType, entityID, newStatus)

	return args.Error(0)
}

func (m *MockEntityStore) UpdateField(ctx context.Context, tenantID, entityType, entityID, field string, value any) error {
	args := m.Called(ctx, tenantID, entityType, entityID, field, value)

	return args.Error(0)
}

func (m *MockEntityStore) UpdateAssignment(ctx context.Context, tenantID, entityType, entityID, userID string) error {
	args := m.Called(ctx, tenantID, entityType, entityID, userID)

	return args.Error(0)
}
