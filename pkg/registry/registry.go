// Package registry holds the action factories and validates rule-authored
// action configuration against each factory's schema.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/protocol"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:          logger.With("module", "registry"),
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

func (r *Registry) CreateAction(actionType models.ActionType, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[string(actionType)]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Create(config)
}

// ValidateAction checks one action's config against its factory schema.
// Rules fail this once, at load time, never per firing.
func (r *Registry) ValidateAction(item models.ActionItem) error {
	factory, ok := r.actionFactories[string(item.Type)]
	if !ok {
		return fmt.Errorf("action type '%s' not registered", item.Type)
	}

	schemaLoader := gojsonschema.NewGoLoader(factory.Schema())

	config := item.Config
	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("schema validation for action '%s': %w", item.Type, err)
	}

	if !result.Valid() {
		first := result.Errors()[0]

		return fmt.Errorf("invalid config for action '%s': %s", item.Type, first.String())
	}

	return nil
}

// ValidateRule validates every action a rule carries, including the
// action nested in a schedule_followup config.
func (r *Registry) ValidateRule(rule *models.WorkflowRule) error {
	for i, item := range rule.Actions {
		if err := r.ValidateAction(item); err != nil {
			return fmt.Errorf("action[%d]: %w", i, err)
		}

		if item.Type != models.ActionScheduleFollowup {
			continue
		}

		nested, ok := item.Config["action"].(map[string]any)
		if !ok {
			continue // the followup schema already rejects this
		}

		nestedType, _ := nested["type"].(string)
		nestedConfig, _ := nested["config"].(map[string]any)

		err := r.ValidateAction(models.ActionItem{
			Type:   models.ActionType(nestedType),
			Config: nestedConfig,
		})
		if err != nil {
			return fmt.Errorf("action[%d] nested followup: %w", i, err)
		}
	}

	return nil
}
