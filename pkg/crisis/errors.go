package crisis

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ConfigurationError reports malformed catalog data or a reference to
// something the catalog does not define. It is never fatal during play.
type ConfigurationError struct {
	Subject    string // e.g. "famine.trigger"
	Detail     string
	Suggestion string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error in %s: %s", e.Subject, e.Detail)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// ValidationError collects every issue found while loading a catalog.
type ValidationError struct {
	Issues []*ConfigurationError
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.Error()
	}
	return fmt.Sprintf("catalog has %d issue(s): %s", len(e.Issues), strings.Join(lines, "; "))
}

// Suggest returns the candidate closest to name, or "" if nothing is close.
func Suggest(name string, candidates []string) string {
	if name == "" {
		return ""
	}
	best, bestDist := "", 4
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
