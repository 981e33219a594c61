// Package rules holds the sensitive-data rule set: named categories with
// field-name keywords and start-anchored value patterns, plus the scan
// settings that govern matching.
package rules

import (
	"regexp"
	"sort"
	"strings"
)

// Rule describes one category of sensitive data.
type Rule struct {
	FieldKeywords []string `yaml:"field_keywords"`
	Patterns      []string `yaml:"patterns"`
	Description   string   `yaml:"description"`

	compiled []*regexp.Regexp
}

// Compiled returns the rule's value patterns, compiled and anchored at the
// value start. Malformed patterns were dropped at load time.
func (r *Rule) Compiled() []*regexp.Regexp {
	return r.compiled
}

// Settings govern how rules are applied during a scan.
type Settings struct {
	EnabledRules    []string `yaml:"enabled_rules"`
	CaseSensitive   bool     `yaml:"case_sensitive"`
	MaxValueLength  int      `yaml:"max_value_length"`
	ExcludeTestData bool     `yaml:"exclude_test_data"`
	TestMarkers     []string `yaml:"test_markers"`
}

// Set is a loaded rule set. Immutable after load, safe for shared reads
// across tables and datasources.
type Set struct {
	Rules    map[string]*Rule `yaml:"rules"`
	Settings Settings         `yaml:"settings"`

	enabled map[string]bool
}

// Rule returns the rule for a category, if it exists.
func (s *Set) Rule(category string) (*Rule, bool) {
	r, ok := s.Rules[category]
	return r, ok
}

// IsEnabled reports whether a category is on the enabled list.
func (s *Set) IsEnabled(category string) bool {
	return s.enabled[category]
}

// Enabled returns the enabled categories that exist in the set, sorted so
// scans walk them in a deterministic order.
func (s *Set) Enabled() []string {
	var cats []string
	for cat := range s.Rules {
		if s.enabled[cat] {
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)
	return cats
}

// anchor forces a pattern to match at the value start.
func anchor(pattern string) string {
	if strings.HasPrefix(pattern, "^") {
		return pattern
	}
	return "^(?:" + pattern + ")"
}
