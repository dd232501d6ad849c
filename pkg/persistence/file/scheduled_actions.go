package file

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
)

// ScheduledActionRepository stores deferred actions as
// scheduled_actions/<tenant>/<id>.json.
type ScheduledActionRepository struct {
	root string
}

func NewScheduledActionRepository(root string) *ScheduledActionRepository {
	return &ScheduledActionRepository{root: root}
}

func (r *ScheduledActionRepository) Save(_ context.Context, action *models.ScheduledAction) error {
	return writeJSON(filepath.Join(r.root, "scheduled_actions", action.TenantID, action.ID+".json"), action)
}

func (r *ScheduledActionRepository) ByID(_ context.Context, tenantID, id string) (*models.ScheduledAction, error) {
	var action models.ScheduledAction

	found, err := readJSON(filepath.Join(r.root, "scheduled_actions", tenantID, id+".json"), &action)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrScheduledActionNotFound
	}

	return &action, nil
}

// Due walks every tenant directory; acceptable for the development-scale
// data file persistence is meant for.
func (r *ScheduledActionRepository) Due(_ context.Context, now time.Time, limit int) ([]*models.ScheduledAction, error) {
	tenantDirs, err := filepath.Glob(filepath.Join(r.root, "scheduled_actions", "*"))
	if err != nil {
		return nil, err
	}

	due := make([]*models.ScheduledAction, 0)

	for _, dir := range tenantDirs {
		files, err := listJSONFiles(dir)
		if err != nil {
			return nil, err
		}

		for _, file := range files {
			var action models.ScheduledAction

			found, err := readJSON(file, &action)
			if err != nil {
				return nil, err
			}

			if found && action.Status == models.ScheduledPending && !action.FireAt.After(now) {
				due = append(due, &action)
			}
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].FireAt.Before(due[j].FireAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}
