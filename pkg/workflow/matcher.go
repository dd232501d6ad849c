package workflow

import (
	"slices"
	"time"

	"github.com/lumahq/automation/pkg/fields"
	"github.com/lumahq/automation/pkg/models"
)

// matchesStatusChange reports whether a rule's status_change trigger
// covers the transition. Empty from/to lists match any status.
func matchesStatusChange(rule *models.WorkflowRule, fromStatus, toStatus string) bool {
	if rule.TriggerType != models.TriggerStatusChange {
		return false
	}

	cfg := rule.TriggerConfig

	if len(cfg.FromStatus) > 0 && !slices.Contains(cfg.FromStatus, fromStatus) {
		return false
	}

	if len(cfg.ToStatus) > 0 && !slices.Contains(cfg.ToStatus, toStatus) {
		return false
	}

	return true
}

// matchesEvent reports whether a rule's event trigger covers the named
// event. The event name must match exactly; there are no wildcards.
func matchesEvent(rule *models.WorkflowRule, eventName string) bool {
	return rule.TriggerType == models.TriggerEvent && rule.TriggerConfig.EventName == eventName
}

// elapsedPast reports whether the entity has been in the rule's watched
// status at least the configured number of hours.
func elapsedPast(rule *models.WorkflowRule, entity models.Entity, now time.Time) bool {
	cfg := rule.TriggerConfig

	if cfg.Status != "" && entity.String("status") != cfg.Status {
		return false
	}

	threshold := cfg.ElapsedThresholdHours()
	if threshold <= 0 {
		return false
	}

	hours, ok := fields.ToFloat(fields.Compute(entity, now)["hoursInStatus"])
	if !ok {
		return false
	}

	return hours >= threshold
}
