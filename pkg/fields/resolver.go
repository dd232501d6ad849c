// Package fields resolves dotted field paths against the layered
// evaluation context and derives computed time-based fields.
package fields

import (
	"strings"

	"github.com/lumahq/automation/pkg/models"
)

// Context is the layered state a condition or template resolves against.
type Context struct {
	Entity   models.Entity
	Previous models.Entity
	User     map[string]any
	Computed map[string]any
}

// Resolve looks up a dotted field path. Paths prefixed with "previous.",
// "user." or "computed." address that layer directly; unprefixed names
// are checked against computed fields first, then the entity.
//
// The boolean reports whether the path resolved to a present key; a
// present key may still hold nil.
func (c Context) Resolve(path string) (any, bool) {
	switch {
	case strings.HasPrefix(path, "previous."):
		return lookup(map[string]any(c.Previous), strings.TrimPrefix(path, "previous."))
	case strings.HasPrefix(path, "user."):
		return lookup(c.User, strings.TrimPrefix(path, "user."))
	case strings.HasPrefix(path, "computed."):
		return lookup(c.Computed, strings.TrimPrefix(path, "computed."))
	case strings.HasPrefix(path, "entity."):
		return lookup(map[string]any(c.Entity), strings.TrimPrefix(path, "entity."))
	}

	if v, ok := lookup(c.Computed, path); ok {
		return v, true
	}

	return lookup(map[string]any(c.Entity), path)
}

// lookup walks a dotted path through nested maps.
func lookup(m map[string]any, path string) (any, bool) {
	if m == nil || path == "" {
		return nil, false
	}

	segments := strings.Split(path, ".")

	var current any = m

	for _, seg := range segments {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}

			current = v
		case models.Entity:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}

			current = v
		default:
			return nil, false
		}
	}

	return current, true
}
