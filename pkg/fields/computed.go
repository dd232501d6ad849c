package fields

import (
	"math"
	"time"

	"github.com/lumahq/automation/pkg/models"
)

// Statuses that stop an overdue due date from flagging the entity.
var closedStatuses = map[string]struct{}{
	"completed": {},
	"done":      {},
	"cancelled": {},
}

// Compute derives the time-based fields from an entity's raw timestamps,
// truncated to whole units against the supplied clock. Fields whose
// source timestamp is absent or unparsable carry nil, except
// daysSinceLastUpdate which defaults to 0 as a safe comparison default.
//
// remindersSent is not derived here: the engine injects it from the
// per-(rule, entity) state before evaluation.
func Compute(entity models.Entity, now time.Time) map[string]any {
	sinceUpdated := daysSince(entity, now, "updatedAt", "updated_at")

	computed := map[string]any{
		"daysSinceCreated":    daysSince(entity, now, "createdAt", "created_at"),
		"daysSinceUpdated":    sinceUpdated,
		"daysSinceLastUpdate": sinceUpdated,
		"hoursInStatus":       hoursInStatus(entity, now),
		"daysSinceDue":        nil,
		"isOverdue":           false,
	}

	if sinceUpdated == nil {
		computed["daysSinceLastUpdate"] = 0
	}

	due, ok := entity.First("dueDate", "due_date")
	if !ok {
		return computed
	}

	dueAt, ok := ParseTime(due)
	if !ok {
		return computed
	}

	computed["daysSinceDue"] = int(math.Floor(now.Sub(dueAt).Hours() / 24))

	if dueAt.Before(now) {
		_, closed := closedStatuses[entity.String("status")]
		computed["isOverdue"] = !closed
	}

	return computed
}

func daysSince(entity models.Entity, now time.Time, keys ...string) any {
	v, ok := entity.First(keys...)
	if !ok {
		return nil
	}

	at, ok := ParseTime(v)
	if !ok {
		return nil
	}

	return int(math.Floor(now.Sub(at).Hours() / 24))
}

// hoursInStatus measures time since the status last changed, falling
// back to the update timestamp when no explicit status-changed timestamp
// exists, and 0 when neither is present.
func hoursInStatus(entity models.Entity, now time.Time) int {
	v, ok := entity.First("statusChangedAt", "status_changed_at")
	if !ok {
		v, ok = entity.First("updatedAt", "updated_at")
	}

	if !ok {
		return 0
	}

	at, ok := ParseTime(v)
	if !ok {
		return 0
	}

	return int(math.Floor(now.Sub(at).Hours()))
}
