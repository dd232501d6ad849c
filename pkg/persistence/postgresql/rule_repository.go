package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lumahq/automation/pkg/models"
)

// RuleRepository reads tenant rule sets from the database.
type RuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRuleRepository(db *sql.DB, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

// RulesByTenant returns every rule of the tenant, active or not, in
// priority order.
func (r *RuleRepository) RulesByTenant(ctx context.Context, tenantID string) ([]*models.WorkflowRule, error) {
	query := `
		SELECT
			id
		  , tenant_id
		  , name
		  , description
		  , is_active
		  , priority
		  , trigger_type
		  , trigger_config
		  , conditions
		  , actions
		  , cooldown_hours
		  , max_executions
		  , requires_approval
		  , approver_role
		  , entity_types
		  , created_at
		  , updated_at
		FROM workflow_rules
		WHERE tenant_id = $1
		ORDER BY priority DESC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	rules := make([]*models.WorkflowRule, 0)

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// Save upserts a rule. Used by the administrative surface and tests.
func (r *RuleRepository) Save(ctx context.Context, rule *models.WorkflowRule) error {
	triggerConfigJSON, err := json.Marshal(rule.TriggerConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}

	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	actionsJSON, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	entityTypesJSON, err := json.Marshal(rule.EntityTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal entity types: %w", err)
	}

	query := `
		INSERT INTO workflow_rules (id, tenant_id, name, description, is_active, priority,
			trigger_type, trigger_config, conditions, actions, cooldown_hours, max_executions,
			requires_approval, approver_role, entity_types, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			priority = EXCLUDED.priority,
			trigger_type = EXCLUDED.trigger_type,
			trigger_config = EXCLUDED.trigger_config,
			conditions = EXCLUDED.conditions,
			actions = EXCLUDED.actions,
			cooldown_hours = EXCLUDED.cooldown_hours,
			max_executions = EXCLUDED.max_executions,
			requires_approval = EXCLUDED.requires_approval,
			approver_role = EXCLUDED.approver_role,
			entity_types = EXCLUDED.entity_types,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID,
		rule.TenantID,
		rule.Name,
		rule.Description,
		rule.IsActive,
		rule.Priority,
		rule.TriggerType,
		triggerConfigJSON,
		conditionsJSON,
		actionsJSON,
		rule.CooldownHours,
		rule.MaxExecutions,
		rule.RequiresApproval,
		rule.ApproverRole,
		entityTypesJSON,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	return nil
}

func scanRule(scanner interface{ Scan(dest ...any) error }) (*models.WorkflowRule, error) {
	var (
		rule              models.WorkflowRule
		triggerConfigJSON []byte
		conditionsJSON    []byte
		actionsJSON       []byte
		entityTypesJSON   []byte
		cooldownHours     sql.NullInt64
		maxExecutions     sql.NullInt64
	)

	err := scanner.Scan(
		&rule.ID,
		&rule.TenantID,
		&rule.Name,
		&rule.Description,
		&rule.IsActive,
		&rule.Priority,
		&rule.TriggerType,
		&triggerConfigJSON,
		&conditionsJSON,
		&actionsJSON,
		&cooldownHours,
		&maxExecutions,
		&rule.RequiresApproval,
		&rule.ApproverRole,
		&entityTypesJSON,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(triggerConfigJSON, &rule.TriggerConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger config: %w", err)
	}

	if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
	}

	if err := json.Unmarshal(actionsJSON, &rule.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}

	if err := json.Unmarshal(entityTypesJSON, &rule.EntityTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity types: %w", err)
	}

	if cooldownHours.Valid {
		v := int(cooldownHours.Int64)
		rule.CooldownHours = &v
	}

	if maxExecutions.Valid {
		v := int(maxExecutions.Int64)
		rule.MaxExecutions = &v
	}

	return &rule, nil
}
