package classify

import (
	"strings"

	"github.com/dbtrawl/dbtrawl/internal/rules"
)

// Confirm decides whether a classification represents real sensitive data.
// It re-runs the active rule set's patterns over every recorded value
// rather than trusting the stored value_match flags, so the verdict
// reflects the rule set in force now even if the classification was
// produced under an earlier snapshot. A match recorded purely on
// field-name grounds never confirms.
func Confirm(set *rules.Set, result Result) bool {
	if len(result) == 0 {
		return false
	}

	for cat, matches := range result {
		rule, ok := set.Rule(cat)
		if !ok {
			continue
		}
		for _, m := range matches {
			if m.Value == nil {
				continue
			}
			s := strings.TrimSpace(*m.Value)
			for _, re := range rule.Compiled() {
				if re.MatchString(s) {
					return true
				}
			}
		}
	}
	return false
}

// Verdict renders a confirmation for report cells.
func Verdict(confirmed bool) string {
	if confirmed {
		return "yes"
	}
	return "no"
}
