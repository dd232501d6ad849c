package suggestaction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/mocks"
	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/protocol"
)

func execContext(entity models.Entity) protocol.ExecContext {
	return protocol.ExecContext{
		TenantID:   "t1",
		EntityType: "project",
		Entity:     entity,
		Fields:     fields.Context{Entity: entity},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewAction_RequiresMessage(t *testing.T) {
	_, err := NewAction(map[string]any{}, nil)
	assert.Error(t, err)
}

func TestExecute_StoresSuggestion(t *testing.T) {
	store := &mocks.MockPendingNotificationStore{}
	store.On("Push", mock.Anything, mock.MatchedBy(func(n protocol.PendingNotification) bool {
		return n.Kind == "suggestion" && n.Message == "Archive Atlas?" && len(n.Options) == 2
	})).Return(nil)

	action, err := NewAction(map[string]any{
		"message": "Archive {name}?",
		"options": []any{"archive", "keep"},
	}, store)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), execContext(models.Entity{
		"id":   "proj-1",
		"name": "Atlas",
	}), testLogger())
	require.NoError(t, err)

	assert.Equal(t, true, result["stored"])
	store.AssertExpectations(t)
}

func TestExecute_NilStoreDoesNotFail(t *testing.T) {
	action, err := NewAction(map[string]any{"message": "anything"}, nil)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), execContext(models.Entity{"id": "proj-1"}), testLogger())
	require.NoError(t, err)
	assert.Equal(t, false, result["stored"])
}

func TestExecute_StoreFailureDoesNotFail(t *testing.T) {
	store := &mocks.MockPendingNotificationStore{}
	store.On("Push", mock.Anything, mock.Anything).Return(fmt.Errorf("redis down"))

	action, err := NewAction(map[string]any{"message": "anything"}, store)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), execContext(models.Entity{"id": "proj-1"}), testLogger())
	require.NoError(t, err)
	assert.Equal(t, false, result["stored"])
}
