package rss

import (
	"fmt"
	"regexp"
	"strings"
)

// Ignore rule scopes. A rule matches against the item title, its content, or
// either of the two.
const (
	ScopeTitle   = "title"
	ScopeContent = "content"
	ScopeAny     = "any"
)

type ignoreRule struct {
	scope   string
	pattern *regexp.Regexp
}

// Ignores is a set of view-time filter rules. Matching items are excluded
// when a feed is internalized from the cache; they are never deleted from
// storage.
type Ignores struct {
	rules []ignoreRule
}

// NewIgnores returns an empty rule set.
func NewIgnores() *Ignores {
	return &Ignores{}
}

// Add compiles a case-insensitive pattern and appends it under the given
// scope. An empty scope defaults to ScopeAny.
func (ig *Ignores) Add(scope, pattern string) error {
	scope = strings.TrimSpace(strings.ToLower(scope))
	if scope == "" {
		scope = ScopeAny
	}
	switch scope {
	case ScopeTitle, ScopeContent, ScopeAny:
	default:
		return fmt.Errorf("unknown ignore scope %q", scope)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("compile ignore pattern %q: %w", pattern, err)
	}
	ig.rules = append(ig.rules, ignoreRule{scope: scope, pattern: re})
	return nil
}

// Matches reports whether any rule matches the item.
func (ig *Ignores) Matches(it *Item) bool {
	if ig == nil {
		return false
	}
	for _, r := range ig.rules {
		switch r.scope {
		case ScopeTitle:
			if r.pattern.MatchString(it.Title) {
				return true
			}
		case ScopeContent:
			if r.pattern.MatchString(it.Content) {
				return true
			}
		case ScopeAny:
			if r.pattern.MatchString(it.Title) || r.pattern.MatchString(it.Content) {
				return true
			}
		}
	}
	return false
}

// Len returns the number of rules.
func (ig *Ignores) Len() int {
	if ig == nil {
		return 0
	}
	return len(ig.rules)
}
