package template

import (
	"testing"
	"time"

	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestRender_NameShortcuts(t *testing.T) {
	data := Data{
		Context: fields.Context{Entity: models.Entity{"name": "John Doe"}},
	}

	assert.Equal(t, "Hello John!", Render("Hello {firstName}!", data))
	assert.Equal(t, "Dear Doe", Render("Dear {lastName}", data))
}

func TestRender_UnknownTokenStaysVerbatim(t *testing.T) {
	data := Data{
		Context: fields.Context{Entity: models.Entity{"name": "John Doe"}},
	}

	assert.Equal(t, "Value: {unknownVariable}", Render("Value: {unknownVariable}", data))
}

func TestRender_FieldPaths(t *testing.T) {
	data := Data{
		Context: fields.Context{
			Entity: models.Entity{
				"status": "pending",
				"metadata": map[string]any{
					"campaign": map[string]any{"name": "spring"},
				},
			},
			Computed: map[string]any{"daysSinceDue": 3},
			User:     map[string]any{"email": "ops@lumahq.com"},
		},
	}

	assert.Equal(t, "status=pending", Render("status={status}", data))
	assert.Equal(t, "campaign spring", Render("campaign {metadata.campaign.name}", data))
	assert.Equal(t, "3 days late", Render("{computed.daysSinceDue} days late", data))
	assert.Equal(t, "by ops@lumahq.com", Render("by {user.email}", data))
}

func TestRender_DueDateShortcut(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	data := Data{
		Context: fields.Context{Entity: models.Entity{"dueDate": due.Format(time.RFC3339)}},
	}

	assert.Equal(t, "Due Sep 15, 2026", Render("Due {dueDate}", data))
}

func TestRender_AdminURL(t *testing.T) {
	data := Data{
		EntityType: "project",
		Context:    fields.Context{Entity: models.Entity{"id": "prj-42"}},
	}

	assert.Equal(t,
		"See https://app.lumahq.com/projects/prj-42",
		Render("See {adminUrl}", data))
}

func TestRender_NumbersRenderWithoutExponent(t *testing.T) {
	data := Data{
		Context: fields.Context{Entity: models.Entity{"budget": float64(1500)}},
	}

	assert.Equal(t, "Budget: 1500", Render("Budget: {budget}", data))
}
