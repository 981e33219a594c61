// Package classify fuses two independent signals over one sampled record:
// field-name keyword matches (naming convention suggests sensitive data)
// and value-pattern matches (the value itself conforms). The split lets
// the aggregator treat pattern-confirmed data as the stronger signal.
package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/dbtrawl/dbtrawl/internal/rules"
)

// displayValueMax caps the value stored on a match.
const displayValueMax = 50

// Match records why one column matched one category.
type Match struct {
	Value      *string `json:"value"`
	FieldMatch bool    `json:"field_match"`
	ValueMatch bool    `json:"value_match"`
}

// Result maps category → column → match.
type Result map[string]map[string]Match

// Classify scans one record, aligned positionally with columns, against
// every enabled category. A length mismatch or empty record yields an empty
// result, no partial matching. Malformed patterns were already dropped
// (with a warning) when the rule set was loaded.
func Classify(set *rules.Set, columns []string, record []any) Result {
	out := Result{}
	if len(record) == 0 || len(record) != len(columns) {
		return out
	}

	settings := set.Settings
	cats := set.Enabled()

	for i, column := range columns {
		value := record[i]

		for _, cat := range cats {
			rule, ok := set.Rule(cat)
			if !ok {
				continue
			}

			fieldMatch := keywordMatch(column, rule.FieldKeywords, settings.CaseSensitive)

			valueMatch := false
			if value != nil {
				s := strings.TrimSpace(Stringify(value))

				// Synthetic data and over-long values disqualify the pair
				// outright; a field-name hit does not survive either check.
				if settings.ExcludeTestData && containsMarker(s, settings.TestMarkers) {
					continue
				}
				if utf8.RuneCountInString(s) > settings.MaxValueLength {
					continue
				}
				for _, re := range rule.Compiled() {
					if re.MatchString(s) {
						valueMatch = true
						break
					}
				}
			}

			if !fieldMatch && !valueMatch {
				continue
			}

			if out[cat] == nil {
				out[cat] = make(map[string]Match)
			}
			out[cat][column] = Match{
				Value:      displayValue(value),
				FieldMatch: fieldMatch,
				ValueMatch: valueMatch,
			}
		}
	}

	return out
}

// keywordMatch reports whether any keyword appears as a substring of the
// column name, case-folded unless caseSensitive.
func keywordMatch(column string, keywords []string, caseSensitive bool) bool {
	check := column
	if !caseSensitive {
		check = strings.ToLower(check)
	}
	for _, kw := range keywords {
		if !caseSensitive {
			kw = strings.ToLower(kw)
		}
		if strings.Contains(check, kw) {
			return true
		}
	}
	return false
}

// containsMarker reports case-insensitive containment of any test marker.
func containsMarker(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// displayValue trims and caps the original value for recording on a match.
// Nil stays nil.
func displayValue(v any) *string {
	if v == nil {
		return nil
	}
	s := Truncate(strings.TrimSpace(Stringify(v)), displayValueMax)
	return &s
}

// Truncate caps s at n runes, appending an ellipsis marker when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
