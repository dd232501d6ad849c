// Package protocol defines the contracts between the engine core and its
// pluggable parts: action handlers and the collaborator systems they
// touch.
package protocol

import (
	"context"
	"log/slog"

	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/template"
)

// ExecContext is the per-firing state handed to every action handler.
type ExecContext struct {
	TenantID    string
	RuleID      string
	ExecutionID string
	EntityType  string
	Entity      models.Entity
	Fields      fields.Context
}

// TemplateData adapts the context for {token} interpolation.
func (e ExecContext) TemplateData() template.Data {
	return template.Data{Context: e.Fields, EntityType: e.EntityType}
}

// Action executes one configured action against an entity. A returned
// error is converted to a structured failure at the dispatch boundary;
// it never aborts the surrounding trigger-handling call.
type Action interface {
	Execute(ctx context.Context, ectx ExecContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory builds actions of one kind from rule configuration.
type ActionFactory interface {
	ID() string
	Name() string
	Description() string

	// Schema is the JSON schema the action's config is validated against
	// at rule-load time.
	Schema() map[string]any

	Create(config map[string]any) (Action, error)
}
