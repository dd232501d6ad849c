package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
)

// EntityStateRepository stores counters as
// entity_states/<tenant>/<rule>_<type>_<id>.json. A process-wide mutex
// makes Acquire atomic; file persistence assumes a single engine
// process.
type EntityStateRepository struct {
	root string
	mu   sync.Mutex
}

func NewEntityStateRepository(root string) *EntityStateRepository {
	return &EntityStateRepository{root: root}
}

func (r *EntityStateRepository) statePath(tenantID, ruleID, entityType, entityID string) string {
	name := fmt.Sprintf("%s_%s_%s.json", ruleID, entityType, entityID)

	return filepath.Join(r.root, "entity_states", tenantID, name)
}

func (r *EntityStateRepository) Get(_ context.Context, tenantID, ruleID, entityType, entityID string) (*models.EntityWorkflowState, error) {
	var state models.EntityWorkflowState

	found, err := readJSON(r.statePath(tenantID, ruleID, entityType, entityID), &state)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrStateNotFound
	}

	return &state, nil
}

func (r *EntityStateRepository) Acquire(_ context.Context, tenantID, ruleID, entityType, entityID string,
	cooldownHours, maxExecutions *int, now time.Time,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.statePath(tenantID, ruleID, entityType, entityID)

	state := models.EntityWorkflowState{
		TenantID:   tenantID,
		RuleID:     ruleID,
		EntityType: entityType,
		EntityID:   entityID,
	}

	if _, err := readJSON(path, &state); err != nil {
		return false, err
	}

	if maxExecutions != nil && state.ExecutionCount >= *maxExecutions {
		return false, nil
	}

	if cooldownHours != nil && state.LastExecutedAt != nil {
		cooldown := time.Duration(*cooldownHours) * time.Hour
		if now.Sub(*state.LastExecutedAt) < cooldown {
			return false, nil
		}
	}

	state.ExecutionCount++
	state.LastExecutedAt = &now

	if err := writeJSON(path, &state); err != nil {
		return false, err
	}

	return true, nil
}
