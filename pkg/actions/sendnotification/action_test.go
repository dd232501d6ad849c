package sendnotification

import (
	"context"
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

func TestNewAction_RequiresTo(t *testing.T) {
	_, err := NewAction(map[string]any{}, &mocks.MockNotifier{})
	assert.Error(t, err)
}

func TestExecute_NotifiesAssignee(t *testing.T) {
	notifier := &mocks.MockNotifier{}
	notifier.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n protocol.Notification) bool {
		return n.UserID == "user-7" && n.Body == "Atlas is stale"
	})).Return(nil)

	action, err := NewAction(map[string]any{
		"to":      "assignee",
		"message": "{name} is stale",
	}, notifier)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), execContext(models.Entity{
		"id":          "proj-1",
		"name":        "Atlas",
		"assignee_id": "user-7",
	}), testLogger())
	require.NoError(t, err)

	assert.Equal(t, "user-7", result["user_id"])
	notifier.AssertExpectations(t)
}

func TestExecute_UnresolvableRecipient(t *testing.T) {
	action, err := NewAction(map[string]any{
		"to":      "assignee",
		"message": "hello",
	}, &mocks.MockNotifier{})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), execContext(models.Entity{
		"id": "proj-1",
	}), testLogger())
	assert.Error(t, err)
}

func TestExecute_LiteralUserID(t *testing.T) {
	notifier := &mocks.MockNotifier{}
	notifier.On("CreateNotification", mock.Anything, mock.Anything).Return(nil)

	action, err := NewAction(map[string]any{
		"to":      "user-42",
		"message": "hello",
	}, notifier)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), execContext(models.Entity{"id": "proj-1"}), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "user-42", result["user_id"])
}
