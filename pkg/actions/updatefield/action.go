// Package updatefield implements the update_field action. String values
// are interpolated before the write; dotted field names address into the
// entity's JSON metadata and are merge-patched rather than replaced.
package updatefield

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/template"
)

type Action struct {
	Field string
	Value any

	entities persistence.EntityStore
}

func NewAction(config map[string]any, entities persistence.EntityStore) (*Action, error) {
	field, _ := config["field"].(string)
	if field == "" {
		return nil, fmt.Errorf("update_field requires 'field'")
	}

	return &Action{Field: field, Value: config["value"], entities: entities}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "update_field")

	value := a.Value
	if s, ok := value.(string); ok {
		value = template.Render(s, ectx.TemplateData())
	}

	err := a.entities.UpdateField(ctx, ectx.TenantID, ectx.EntityType, ectx.Entity.ID(), a.Field, value)
	if err != nil {
		return nil, fmt.Errorf("update %s field %q: %w", ectx.EntityType, a.Field, err)
	}

	logger.InfoContext(ctx, "Updated entity field",
		"entity_id", ectx.Entity.ID(),
		"field", a.Field)

	return map[string]any{
		"field": a.Field,
		"value": value,
	}, nil
}
