// Package assignto implements the assign_to action: it writes the
// entity's assignee column from a literal user id or a role that
// resolves through the entity's ownership columns.
package assignto

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
)

type Action struct {
	UserID string
	Role   string

	entities persistence.EntityStore
}

func NewAction(config map[string]any, entities persistence.EntityStore) (*Action, error) {
	userID, _ := config["userId"].(string)
	role, _ := config["role"].(string)

	if userID == "" && role == "" {
		return nil, fmt.Errorf("assign_to requires 'userId' or 'role'")
	}

	switch role {
	case "", "owner", "coordinator":
	default:
		return nil, fmt.Errorf("assign_to role %q is not supported", role)
	}

	return &Action{UserID: userID, Role: role, entities: entities}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "assign_to")

	userID := a.UserID
	if userID == "" {
		resolved, err := resolveRole(a.Role, ectx.Entity)
		if err != nil {
			return nil, err
		}

		userID = resolved
	}

	err := a.entities.UpdateAssignment(ctx, ectx.TenantID, ectx.EntityType, ectx.Entity.ID(), userID)
	if err != nil {
		return nil, fmt.Errorf("assign %s: %w", ectx.EntityType, err)
	}

	logger.InfoContext(ctx, "Assigned entity",
		"entity_id", ectx.Entity.ID(),
		"assignee", userID)

	return map[string]any{"assignee": userID}, nil
}

func resolveRole(role string, entity models.Entity) (string, error) {
	var keys []string

	switch role {
	case "owner":
		keys = []string{"ownerId", "owner_id"}
	case "coordinator":
		keys = []string{"coordinatorId", "coordinator_id"}
	default:
		return "", fmt.Errorf("assign_to role %q is not supported", role)
	}

	v, ok := entity.First(keys...)
	if !ok {
		return "", fmt.Errorf("entity has no %s to assign to", role)
	}

	return fmt.Sprintf("%v", v), nil
}
