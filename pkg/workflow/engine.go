// Package workflow implements the rule engine: trigger matching,
// condition evaluation, limiter enforcement, action dispatch and the
// approval and scheduled-action lifecycles.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lumahq/automation/pkg/conditions"
	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/log"
	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/registry"
)

// Engine runs one tenant's rules. The rule set is an immutable snapshot
// swapped atomically on reload, so firings never observe a half-loaded
// set.
type Engine struct {
	tenantID string
	persist  persistence.Persistence
	registry *registry.Registry
	validate *validator.Validate
	logger   *slog.Logger

	rules atomic.Pointer[[]*models.WorkflowRule]
}

func NewEngine(tenantID string, persist persistence.Persistence, reg *registry.Registry, logger *slog.Logger) *Engine {
	engine := &Engine{
		tenantID: tenantID,
		persist:  persist,
		registry: reg,
		validate: validator.New(),
		logger:   log.WithTenant("engine", tenantID),
	}

	if logger != nil {
		engine.logger = logger.With("module", "engine", "tenant_id", tenantID)
	}

	empty := make([]*models.WorkflowRule, 0)
	engine.rules.Store(&empty)

	return engine
}

// LoadRules fetches the tenant's rules, validates each and swaps the
// snapshot. A rule that fails validation is kept but flagged inactive so
// it shows up in listings without ever firing.
func (e *Engine) LoadRules(ctx context.Context) error {
	rules, err := e.persist.Rules().RulesByTenant(ctx, e.tenantID)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	for _, rule := range rules {
		if err := e.validateRule(rule); err != nil {
			e.logger.WarnContext(ctx, "Rule failed validation, flagging inactive",
				"rule_id", rule.ID,
				"rule_name", rule.Name,
				"error", err)

			rule.IsActive = false
		}
	}

	models.SortRules(rules)
	e.rules.Store(&rules)

	e.logger.InfoContext(ctx, "Loaded rules", "count", len(rules))

	return nil
}

// ReloadRules re-reads the rule set. Safe to call while firings are in
// flight.
func (e *Engine) ReloadRules(ctx context.Context) error {
	return e.LoadRules(ctx)
}

func (e *Engine) validateRule(rule *models.WorkflowRule) error {
	if err := e.validate.Struct(rule); err != nil {
		return fmt.Errorf("rule structure: %w", err)
	}

	if err := e.registry.ValidateRule(rule); err != nil {
		return err
	}

	return nil
}

// TenantID returns the tenant this engine serves.
func (e *Engine) TenantID() string {
	return e.tenantID
}

// Rules returns the current snapshot. Callers must not mutate it.
func (e *Engine) Rules() []*models.WorkflowRule {
	return *e.rules.Load()
}

// ActiveRules returns the active subset of the snapshot.
func (e *Engine) ActiveRules() []*models.WorkflowRule {
	all := e.Rules()

	active := make([]*models.WorkflowRule, 0, len(all))

	for _, rule := range all {
		if rule.IsActive {
			active = append(active, rule)
		}
	}

	return active
}

// RulesForEntityType returns active rules covering the entity type.
func (e *Engine) RulesForEntityType(entityType string) []*models.WorkflowRule {
	matching := make([]*models.WorkflowRule, 0)

	for _, rule := range e.ActiveRules() {
		if rule.AppliesTo(entityType) {
			matching = append(matching, rule)
		}
	}

	return matching
}

// HandleStatusChange fires every matching status_change rule, in
// priority order, and returns the executions it recorded.
func (e *Engine) HandleStatusChange(ctx context.Context, entityType, entityID, fromStatus, toStatus string, user map[string]any) ([]*models.WorkflowExecution, error) {
	entity, err := e.persist.Entities().Fetch(ctx, e.tenantID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", entityType, entityID, err)
	}

	previous := previousEntity(entity, fromStatus)
	snapshot := map[string]any{"from_status": fromStatus, "to_status": toStatus}

	executions := make([]*models.WorkflowExecution, 0)

	for _, rule := range e.RulesForEntityType(entityType) {
		if !matchesStatusChange(rule, fromStatus, toStatus) {
			continue
		}

		execution, err := e.fire(ctx, rule, firing{
			entityType: entityType,
			entity:     entity,
			previous:   previous,
			user:       user,
			snapshot:   snapshot,
		})
		if err != nil {
			e.logger.ErrorContext(ctx, "Rule firing failed",
				"rule_id", rule.ID,
				"entity_id", entityID,
				"error", err)

			continue
		}

		if execution != nil {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}

// HandleEvent fires every matching event rule for a named domain event.
func (e *Engine) HandleEvent(ctx context.Context, entityType, entityID, eventName string, payload map[string]any) ([]*models.WorkflowExecution, error) {
	entity, err := e.persist.Entities().Fetch(ctx, e.tenantID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", entityType, entityID, err)
	}

	snapshot := map[string]any{"event_name": eventName}
	if payload != nil {
		snapshot["payload"] = payload
	}

	executions := make([]*models.WorkflowExecution, 0)

	for _, rule := range e.RulesForEntityType(entityType) {
		if !matchesEvent(rule, eventName) {
			continue
		}

		execution, err := e.fire(ctx, rule, firing{
			entityType: entityType,
			entity:     entity,
			user:       payload,
			snapshot:   snapshot,
		})
		if err != nil {
			e.logger.ErrorContext(ctx, "Rule firing failed",
				"rule_id", rule.ID,
				"entity_id", entityID,
				"error", err)

			continue
		}

		if execution != nil {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}

// TriggerManually fires one manual rule against one entity. bypassChecks
// skips the cooldown and max-execution limiter for this firing; the
// execution still counts toward neither limit.
func (e *Engine) TriggerManually(ctx context.Context, ruleID, entityType, entityID string, user map[string]any, bypassChecks bool) (*models.WorkflowExecution, error) {
	rule := e.ruleByID(ruleID)
	if rule == nil {
		return nil, persistence.ErrRuleNotFound
	}

	if !rule.IsActive {
		return nil, fmt.Errorf("rule %s is not active", ruleID)
	}

	if rule.TriggerType != models.TriggerManual {
		return nil, fmt.Errorf("rule %s is not manually triggerable", ruleID)
	}

	if !rule.AppliesTo(entityType) {
		return nil, fmt.Errorf("rule %s does not apply to %s", ruleID, entityType)
	}

	entity, err := e.persist.Entities().Fetch(ctx, e.tenantID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", entityType, entityID, err)
	}

	snapshot := map[string]any{"triggered_manually": true}
	if bypassChecks {
		snapshot["bypass_checks"] = true
	}

	return e.fire(ctx, rule, firing{
		entityType:   entityType,
		entity:       entity,
		user:         user,
		snapshot:     snapshot,
		bypassChecks: bypassChecks,
	})
}

// CheckTimeElapsedTriggers sweeps every entity covered by an active
// time_elapsed rule and fires the ones that sat in the configured status
// past the threshold. The limiter keeps repeated sweeps from re-firing
// inside the cooldown window.
func (e *Engine) CheckTimeElapsedTriggers(ctx context.Context) ([]*models.WorkflowExecution, error) {
	executions := make([]*models.WorkflowExecution, 0)

	for _, rule := range e.ActiveRules() {
		if rule.TriggerType != models.TriggerTimeElapsed {
			continue
		}

		entityTypes := rule.EntityTypes
		if len(entityTypes) == 0 {
			entityTypes = models.KnownEntityTypes
		}

		for _, entityType := range entityTypes {
			entities, err := e.persist.Entities().List(ctx, e.tenantID, entityType)
			if err != nil {
				e.logger.ErrorContext(ctx, "Failed to list entities for sweep",
					"entity_type", entityType,
					"error", err)

				continue
			}

			for _, entity := range entities {
				if !elapsedPast(rule, entity, time.Now().UTC()) {
					continue
				}

				execution, err := e.fire(ctx, rule, firing{
					entityType: entityType,
					entity:     entity,
					snapshot: map[string]any{
						"status":          rule.TriggerConfig.Status,
						"threshold_hours": rule.TriggerConfig.ElapsedThresholdHours(),
					},
				})
				if err != nil {
					e.logger.ErrorContext(ctx, "Rule firing failed",
						"rule_id", rule.ID,
						"entity_id", entity.ID(),
						"error", err)

					continue
				}

				if execution != nil {
					executions = append(executions, execution)
				}
			}
		}
	}

	return executions, nil
}

// firing is the per-fire input: the entity, its prior state for
// status_change triggers, caller-supplied user context and the trigger
// snapshot persisted on the execution record.
type firing struct {
	entityType string
	entity     models.Entity
	previous   models.Entity
	user       map[string]any
	snapshot   map[string]any

	// Manual triggers may skip the limiter entirely.
	bypassChecks bool
}

// fire runs the full pipeline for one (rule, entity) pair. It returns
// nil without recording anything when the limiter pre-check blocks; all
// other outcomes produce an execution record.
func (e *Engine) fire(ctx context.Context, rule *models.WorkflowRule, f firing) (*models.WorkflowExecution, error) {
	now := time.Now().UTC()
	entityID := f.entity.ID()

	state, err := e.persist.EntityStates().Get(ctx, e.tenantID, rule.ID, f.entityType, entityID)
	if err != nil && !errors.Is(err, persistence.ErrStateNotFound) {
		return nil, fmt.Errorf("read entity state: %w", err)
	}

	if !f.bypassChecks && blockedByState(rule, state, now) {
		e.logger.DebugContext(ctx, "Limiter blocked firing",
			"rule_id", rule.ID,
			"entity_id", entityID)

		return nil, nil
	}

	fctx := e.fieldContext(f, state, now)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate execution ID: %w", err)
	}

	execution := &models.WorkflowExecution{
		ID:              id.String(),
		TenantID:        e.tenantID,
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		EntityType:      f.entityType,
		EntityID:        entityID,
		TriggerType:     rule.TriggerType,
		TriggerSnapshot: f.snapshot,
		StartedAt:       now,
	}

	evaluation := conditions.Evaluate(rule.Conditions, fctx)
	execution.ConditionResults = evaluation.Results
	execution.ConditionsPassed = evaluation.Passed

	if !evaluation.Passed {
		execution.Result = models.ResultSkipped
		execution.CompletedAt = &now

		return execution, e.persist.Executions().Save(ctx, execution)
	}

	if rule.RequiresApproval {
		execution.Result = models.ResultPendingApproval

		if err := e.persist.Executions().Save(ctx, execution); err != nil {
			return nil, err
		}

		e.logger.InfoContext(ctx, "Execution waiting for approval",
			"execution_id", execution.ID,
			"rule_id", rule.ID,
			"approver_role", rule.ApproverRole)

		return execution, nil
	}

	if !f.bypassChecks {
		acquired, err := e.persist.EntityStates().Acquire(ctx, e.tenantID, rule.ID,
			execution.EntityType, entityID, rule.CooldownHours, rule.MaxExecutions, now)
		if err != nil {
			return nil, fmt.Errorf("acquire execution slot: %w", err)
		}

		if !acquired {
			execution.Result = models.ResultSkipped
			completedAt := time.Now().UTC()
			execution.CompletedAt = &completedAt

			e.logger.InfoContext(ctx, "Lost limiter race, skipping",
				"rule_id", rule.ID,
				"entity_id", entityID)

			return execution, e.persist.Executions().Save(ctx, execution)
		}
	}

	execution.ActionsTaken = e.runActions(ctx, rule, execution, fctx)
	execution.Result = models.ClassifyActionResults(execution.ActionsTaken)

	completedAt := time.Now().UTC()
	execution.CompletedAt = &completedAt

	if err := e.persist.Executions().Save(ctx, execution); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Rule fired",
		"rule_id", rule.ID,
		"entity_id", entityID,
		"result", execution.Result,
		"actions", len(execution.ActionsTaken))

	return execution, nil
}

func (e *Engine) fieldContext(f firing, state *models.EntityWorkflowState, now time.Time) fields.Context {
	computed := fields.Compute(f.entity, now)

	remindersSent := 0
	if state != nil {
		remindersSent = state.ExecutionCount
	}

	computed["remindersSent"] = remindersSent

	return fields.Context{
		Entity:   f.entity,
		Previous: f.previous,
		User:     f.user,
		Computed: computed,
	}
}

func (e *Engine) ruleByID(ruleID string) *models.WorkflowRule {
	for _, rule := range e.Rules() {
		if rule.ID == ruleID {
			return rule
		}
	}

	return nil
}

// previousEntity is the entity as it looked before a status change.
func previousEntity(entity models.Entity, fromStatus string) models.Entity {
	previous := make(models.Entity, len(entity))

	for k, v := range entity {
		previous[k] = v
	}

	previous["status"] = fromStatus

	return previous
}

// blockedByState is the cheap pre-check before any record is written.
// The authoritative check is the conditional Acquire.
func blockedByState(rule *models.WorkflowRule, state *models.EntityWorkflowState, now time.Time) bool {
	if state == nil {
		return false
	}

	if rule.MaxExecutions != nil && state.ExecutionCount >= *rule.MaxExecutions {
		return true
	}

	if rule.CooldownHours != nil && state.LastExecutedAt != nil {
		cooldown := time.Duration(*rule.CooldownHours) * time.Hour
		if now.Sub(*state.LastExecutedAt) < cooldown {
			return true
		}
	}

	return false
}
