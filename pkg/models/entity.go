package models

import "fmt"

// Entity is the generic field bag a collaborator returns for a business
// record. Keys are the storage column names plus whatever the fetcher
// chose to denormalize; values survive a JSON round trip, so numbers are
// float64 and timestamps are RFC 3339 strings unless the store returned
// time.Time directly.
type Entity map[string]any

// KnownEntityTypes is the fixed allow-list of entity kinds with a backing
// table. Unknown types resolve to a bare {id} bag.
var KnownEntityTypes = []string{
	"project", "task", "order", "creator", "customer", "thread", "contact",
}

// ID returns the entity's id field as a string, or "".
func (e Entity) ID() string {
	return e.String("id")
}

// String returns the named field rendered as a string, or "" when absent.
func (e Entity) String(key string) string {
	v, ok := e[key]
	if !ok || v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}

// First returns the first present, non-nil value among the given keys.
// Several timestamp concepts have two aliased column spellings.
func (e Entity) First(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := e[k]; ok && v != nil {
			return v, true
		}
	}

	return nil, false
}
