package file

import (
	"context"
	"path/filepath"

	"github.com/lumahq/automation/pkg/models"
)

// RuleRepository stores rules as rules/<tenant>/<id>.json.
type RuleRepository struct {
	root string
}

func NewRuleRepository(root string) *RuleRepository {
	return &RuleRepository{root: root}
}

func (r *RuleRepository) RulesByTenant(_ context.Context, tenantID string) ([]*models.WorkflowRule, error) {
	files, err := listJSONFiles(filepath.Join(r.root, "rules", tenantID))
	if err != nil {
		return nil, err
	}

	rules := make([]*models.WorkflowRule, 0, len(files))

	for _, file := range files {
		var rule models.WorkflowRule

		found, err := readJSON(file, &rule)
		if err != nil {
			return nil, err
		}

		if found {
			rules = append(rules, &rule)
		}
	}

	models.SortRules(rules)

	return rules, nil
}

// Save writes one rule document. Used by tooling and tests.
func (r *RuleRepository) Save(_ context.Context, rule *models.WorkflowRule) error {
	return writeJSON(filepath.Join(r.root, "rules", rule.TenantID, rule.ID+".json"), rule)
}
