package sitepulse

import (
	"context"
	"strings"
)

// WildcardMarker prefixes a route template segment that matches any value.
const WildcardMarker = ":"

// RuleSet holds operator-defined filtering rules for a crawl.
// A nil RuleSet filters nothing.
type RuleSet struct {
	// IgnorePaths are substrings; a URL whose path contains any of them is dropped.
	IgnorePaths []string `json:"ignorePaths"`

	// Patterns are route templates such as "/blog/:slug". At most one URL per
	// template survives a crawl. Order is significant: the first match wins.
	Patterns []string `json:"patterns"`
}

// Ignores reports whether path contains any of the ignored substrings.
func (r *RuleSet) Ignores(path string) bool {
	if r == nil {
		return false
	}
	for _, ignored := range r.IgnorePaths {
		if ignored != "" && strings.Contains(path, ignored) {
			return true
		}
	}
	return false
}

// Match returns the first configured template matching path.
func (r *RuleSet) Match(path string) (string, bool) {
	if r == nil {
		return "", false
	}
	return FindFirstMatch(path, r.Patterns)
}

// RuleSource loads the rule set used by a crawl invocation.
type RuleSource interface {
	// LoadRules returns the current rule set. Implementations should degrade
	// to an empty rule set rather than fail when no rules are configured.
	LoadRules(ctx context.Context) (*RuleSet, error)
}

// MatchPattern matches a URL path against a route template.
// Both are split into non-empty "/"-separated segments. Template segments that
// start with WildcardMarker match any value; all others must be equal.
// On success the template itself is returned, so that many concrete URLs
// collapse to a single identity.
func MatchPattern(path, template string) (string, bool) {
	pathParts := segments(path)
	templateParts := segments(template)

	if len(pathParts) != len(templateParts) {
		return "", false
	}

	for i, tp := range templateParts {
		if strings.HasPrefix(tp, WildcardMarker) {
			continue
		}
		if tp != pathParts[i] {
			return "", false
		}
	}

	return template, true
}

// FindFirstMatch evaluates templates in order and returns the first match.
func FindFirstMatch(path string, templates []string) (string, bool) {
	for _, template := range templates {
		if matched, ok := MatchPattern(path, template); ok {
			return matched, true
		}
	}
	return "", false
}

func segments(s string) []string {
	parts := strings.Split(s, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
