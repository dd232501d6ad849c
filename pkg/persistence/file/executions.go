package file

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
)

// ExecutionRepository stores executions as executions/<tenant>/<id>.json.
type ExecutionRepository struct {
	root string
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (r *ExecutionRepository) Save(_ context.Context, execution *models.WorkflowExecution) error {
	return writeJSON(filepath.Join(r.root, "executions", execution.TenantID, execution.ID+".json"), execution)
}

func (r *ExecutionRepository) ByID(_ context.Context, tenantID, id string) (*models.WorkflowExecution, error) {
	var execution models.WorkflowExecution

	found, err := readJSON(filepath.Join(r.root, "executions", tenantID, id+".json"), &execution)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrExecutionNotFound
	}

	return &execution, nil
}

func (r *ExecutionRepository) PendingApprovals(_ context.Context, tenantID string) ([]*models.WorkflowExecution, error) {
	files, err := listJSONFiles(filepath.Join(r.root, "executions", tenantID))
	if err != nil {
		return nil, err
	}

	pending := make([]*models.WorkflowExecution, 0)

	for _, file := range files {
		var execution models.WorkflowExecution

		found, err := readJSON(file, &execution)
		if err != nil {
			return nil, err
		}

		if found && execution.Result == models.ResultPendingApproval {
			pending = append(pending, &execution)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].StartedAt.Before(pending[j].StartedAt)
	})

	return pending, nil
}
