package rules

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in rule set: Chinese mobile numbers, resident
// ID numbers, bank card numbers, and email addresses, all enabled.
func Default() *Set {
	s := &Set{
		Rules: map[string]*Rule{
			"phone number": {
				FieldKeywords: []string{"phone", "mobile", "telephone"},
				Patterns:      []string{`^1[3-9]\d{9}$`},
				Description:   "Chinese mobile number",
			},
			"id number": {
				FieldKeywords: []string{"idcard", "id_card", "identity", "citizen"},
				Patterns:      []string{`^\d{17}[\dXx]$`, `^\d{15}$`},
				Description:   "Chinese resident ID number",
			},
			"bank card": {
				FieldKeywords: []string{"bank", "card_no", "cardno", "account_no", "acct"},
				Patterns:      []string{`^\d{16,19}$`},
				Description:   "bank card number",
			},
			"email": {
				FieldKeywords: []string{"email", "mail"},
				Patterns:      []string{`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`},
				Description:   "email address",
			},
		},
		Settings: Settings{
			EnabledRules:    []string{"phone number", "id number", "bank card", "email"},
			CaseSensitive:   false,
			MaxValueLength:  100,
			ExcludeTestData: true,
			TestMarkers:     []string{"test", "demo", "example", "sample", "fake"},
		},
	}
	s.finish(io.Discard)
	return s
}

// Load reads a rule set from a YAML file. A missing or malformed file
// degrades to the built-in default with a logged warning; loading never
// fails past this boundary.
func Load(path string, logw io.Writer) *Set {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(logw, "rules: read %s: %v, using built-in defaults\n", path, err)
		} else {
			fmt.Fprintf(logw, "rules: %s not found, using built-in defaults\n", path)
		}
		return Default()
	}

	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		fmt.Fprintf(logw, "rules: parse %s: %v, using built-in defaults\n", path, err)
		return Default()
	}
	if len(s.Rules) == 0 {
		fmt.Fprintf(logw, "rules: %s defines no rules, using built-in defaults\n", path)
		return Default()
	}

	// Absent settings keep useful defaults; an absent enabled list means
	// every loaded category is active.
	if s.Settings.MaxValueLength <= 0 {
		s.Settings.MaxValueLength = 100
	}
	if s.Settings.EnabledRules == nil {
		for cat := range s.Rules {
			s.Settings.EnabledRules = append(s.Settings.EnabledRules, cat)
		}
	}

	s.finish(logw)
	return &s
}

// finish compiles value patterns and builds the enabled lookup. A pattern
// that fails to compile is skipped with a warning, never fatal.
func (s *Set) finish(logw io.Writer) {
	s.enabled = make(map[string]bool, len(s.Settings.EnabledRules))
	for _, cat := range s.Settings.EnabledRules {
		s.enabled[cat] = true
	}
	for cat, r := range s.Rules {
		r.compiled = r.compiled[:0]
		for _, p := range r.Patterns {
			re, err := regexp.Compile(anchor(p))
			if err != nil {
				fmt.Fprintf(logw, "rules: %s: invalid pattern %q: %v, skipped\n", cat, p, err)
				continue
			}
			r.compiled = append(r.compiled, re)
		}
	}
}

// DefaultYAML returns a commented YAML rendering of the built-in rule set,
// written by `dbtrawl rules init`.
func DefaultYAML() string {
	return `# dbtrawl sensitive-data rules
# Generated by: dbtrawl rules init
#
# Each rule names a category of sensitive data. A column is flagged when a
# field keyword appears in its name, or its sampled value matches a pattern.
# Patterns are matched at the value start.

rules:
  phone number:
    field_keywords: [phone, mobile, telephone]
    patterns: ['^1[3-9]\d{9}$']
    description: Chinese mobile number
  id number:
    field_keywords: [idcard, id_card, identity, citizen]
    patterns: ['^\d{17}[\dXx]$', '^\d{15}$']
    description: Chinese resident ID number
  bank card:
    field_keywords: [bank, card_no, cardno, account_no, acct]
    patterns: ['^\d{16,19}$']
    description: bank card number
  email:
    field_keywords: [email, mail]
    patterns: ['^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$']
    description: email address

settings:
  # Subset of the rules above to apply.
  enabled_rules: [phone number, id number, bank card, email]
  # Fold case when comparing field keywords against column names.
  case_sensitive: false
  # Values longer than this are never pattern-matched.
  max_value_length: 100
  # Skip values that look like synthetic data.
  exclude_test_data: true
  test_markers: [test, demo, example, sample, fake]
`
}
