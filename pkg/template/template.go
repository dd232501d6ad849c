// Package template substitutes {token} placeholders in rule-authored
// message and subject strings. Tokens resolve through the field resolver
// plus a fixed set of named shortcuts; unresolved tokens stay verbatim.
package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/lumahq/automation/pkg/fields"
)

const defaultAdminBaseURL = "https://app.lumahq.com"

var tokenPattern = regexp.MustCompile(`\{([a-zA-Z0-9_.]+)\}`)

// Data carries everything a template may reference.
type Data struct {
	Context    fields.Context
	EntityType string
}

// Render substitutes every {token} it can resolve and leaves the rest
// untouched, so a typo'd token is visible in the delivered message
// instead of silently vanishing.
func Render(input string, data Data) string {
	return tokenPattern.ReplaceAllStringFunc(input, func(match string) string {
		token := strings.Trim(match, "{}")

		if v, ok := shortcut(token, data); ok {
			return v
		}

		if v, ok := data.Context.Resolve(token); ok && v != nil {
			return render(v)
		}

		return match
	})
}

// shortcut handles the named tokens that are not plain field paths.
func shortcut(token string, data Data) (string, bool) {
	entity := data.Context.Entity

	switch token {
	case "firstName":
		if v := entity.String("firstName"); v != "" {
			return v, true
		}

		first, _, _ := strings.Cut(entity.String("name"), " ")

		return first, first != ""
	case "lastName":
		if v := entity.String("lastName"); v != "" {
			return v, true
		}

		_, last, found := strings.Cut(entity.String("name"), " ")

		return last, found && last != ""
	case "dueDate":
		v, ok := entity.First("dueDate", "due_date")
		if !ok {
			return "", false
		}

		due, ok := fields.ParseTime(v)
		if !ok {
			return "", false
		}

		return due.Format("Jan 2, 2006"), true
	case "adminUrl":
		id := entity.ID()
		if id == "" || data.EntityType == "" {
			return "", false
		}

		return fmt.Sprintf("%s/%ss/%s", adminBaseURL(), data.EntityType, id), true
	}

	return "", false
}

func adminBaseURL() string {
	if url := os.Getenv("ADMIN_BASE_URL"); url != "" {
		return strings.TrimSuffix(url, "/")
	}

	return defaultAdminBaseURL
}

func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}

	return fmt.Sprintf("%v", v)
}
