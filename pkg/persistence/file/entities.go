package file

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
)

// EntityStore stores entities as entities/<tenant>/<type>/<id>.json.
// Mutations lock a process-wide mutex since they read-modify-write.
type EntityStore struct {
	root string
	mu   sync.Mutex
}

func NewEntityStore(root string) *EntityStore {
	return &EntityStore{root: root}
}

func (s *EntityStore) entityPath(tenantID, entityType, entityID string) string {
	return filepath.Join(s.root, "entities", tenantID, entityType, entityID+".json")
}

func (s *EntityStore) Fetch(_ context.Context, tenantID, entityType, entityID string) (models.Entity, error) {
	if !slices.Contains(models.KnownEntityTypes, entityType) {
		return nil, fmt.Errorf("%w: %s", persistence.ErrUnknownEntityType, entityType)
	}

	var entity models.Entity

	found, err := readJSON(s.entityPath(tenantID, entityType, entityID), &entity)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrEntityNotFound
	}

	return entity, nil
}

func (s *EntityStore) List(_ context.Context, tenantID, entityType string) ([]models.Entity, error) {
	if !slices.Contains(models.KnownEntityTypes, entityType) {
		return nil, fmt.Errorf("%w: %s", persistence.ErrUnknownEntityType, entityType)
	}

	files, err := listJSONFiles(filepath.Join(s.root, "entities", tenantID, entityType))
	if err != nil {
		return nil, err
	}

	entities := make([]models.Entity, 0, len(files))

	for _, file := range files {
		var entity models.Entity

		found, err := readJSON(file, &entity)
		if err != nil {
			return nil, err
		}

		if found {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}

// Save writes one entity document. Used to seed development data.
func (s *EntityStore) Save(_ context.Context, tenantID, entityType string, entity models.Entity) error {
	if !slices.Contains(models.KnownEntityTypes, entityType) {
		return fmt.Errorf("%w: %s", persistence.ErrUnknownEntityType, entityType)
	}

	return writeJSON(s.entityPath(tenantID, entityType, entity.ID()), entity)
}

func (s *EntityStore) UpdateStatus(ctx context.Context, tenantID, entityType, entityID, newStatus string) error {
	return s.mutate(ctx, tenantID, entityType, entityID, func(entity models.Entity) {
		entity["status"] = newStatus
		entity["status_changed_at"] = time.Now().UTC().Format(time.RFC3339)
	})
}

func (s *EntityStore) UpdateField(ctx context.Context, tenantID, entityType, entityID, field string, value any) error {
	return s.mutate(ctx, tenantID, entityType, entityID, func(entity models.Entity) {
		if !strings.Contains(field, ".") {
			entity[field] = value

			return
		}

		metadata, ok := entity["metadata"].(map[string]any)
		if !ok {
			metadata = map[string]any{}
			entity["metadata"] = metadata
		}

		setPath(metadata, strings.Split(field, "."), value)
	})
}

func (s *EntityStore) UpdateAssignment(ctx context.Context, tenantID, entityType, entityID, userID string) error {
	return s.mutate(ctx, tenantID, entityType, entityID, func(entity models.Entity) {
		entity["assignee_id"] = userID
	})
}

func (s *EntityStore) mutate(ctx context.Context, tenantID, entityType, entityID string, apply func(models.Entity)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, err := s.Fetch(ctx, tenantID, entityType, entityID)
	if err != nil {
		return err
	}

	apply(entity)
	entity["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	return writeJSON(s.entityPath(tenantID, entityType, entityID), entity)
}

func setPath(doc map[string]any, path []string, value any) {
	for i, key := range path {
		if i == len(path)-1 {
			doc[key] = value

			return
		}

		next, ok := doc[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[key] = next
		}

		doc = next
	}
}
