package classify

import (
	"strings"
	"testing"

	"github.com/dbtrawl/dbtrawl/internal/rules"
)

func TestClassifyPhoneByNameAndValue(t *testing.T) {
	set := rules.Default()
	columns := []string{"id", "name", "phone"}
	record := []any{1, "John", "13812345678"}

	result := Classify(set, columns, record)

	matches, ok := result["phone number"]
	if !ok {
		t.Fatalf("expected a phone number category, got %v", result)
	}
	m, ok := matches["phone"]
	if !ok {
		t.Fatalf("expected the phone column to match, got %v", matches)
	}
	if !m.FieldMatch {
		t.Error("field_match should be true: column name contains 'phone'")
	}
	if !m.ValueMatch {
		t.Error("value_match should be true: value conforms to the pattern")
	}
	if m.Value == nil || *m.Value != "13812345678" {
		t.Errorf("unexpected recorded value: %v", m.Value)
	}
}

func TestClassifyFieldNameOnly(t *testing.T) {
	set := rules.Default()
	columns := []string{"id", "phone"}
	record := []any{3, "+8613912345678"}

	result := Classify(set, columns, record)

	m := result["phone number"]["phone"]
	if !m.FieldMatch {
		t.Error("field_match should be true: keyword 'phone' present")
	}
	if m.ValueMatch {
		t.Error("value_match must be false: pattern requires a bare 11-digit number")
	}
}

func TestClassifyEmptyRecord(t *testing.T) {
	set := rules.Default()

	if got := Classify(set, []string{"id", "phone"}, nil); len(got) != 0 {
		t.Errorf("empty record must yield an empty result, got %v", got)
	}
	if got := Classify(set, []string{"id", "phone"}, []any{1}); len(got) != 0 {
		t.Errorf("length mismatch must yield an empty result, got %v", got)
	}
}

func TestClassifyTestMarkerSuppressesFieldMatch(t *testing.T) {
	set := rules.Default()
	columns := []string{"phone"}
	record := []any{"test-13812345678"}

	result := Classify(set, columns, record)
	if _, ok := result["phone number"]; ok {
		t.Fatal("a test-marked value must suppress the pair entirely, field-name hit included")
	}
}

func TestClassifyMarkerCheckIsCaseInsensitive(t *testing.T) {
	set := rules.Default()
	result := Classify(set, []string{"phone"}, []any{"DEMO-value"})
	if len(result) != 0 {
		t.Fatalf("marker containment must fold case, got %v", result)
	}
}

func TestClassifyOverlongValueSuppressed(t *testing.T) {
	set := rules.Default()
	long := strings.Repeat("9", 150)

	result := Classify(set, []string{"phone"}, []any{long})
	if len(result) != 0 {
		t.Fatalf("an over-long value must suppress the pair, got %v", result)
	}
}

func TestClassifyNilValueStillMatchesFieldName(t *testing.T) {
	set := rules.Default()
	result := Classify(set, []string{"mobile"}, []any{nil})

	m, ok := result["phone number"]["mobile"]
	if !ok {
		t.Fatal("a nil value must not block a field-name match")
	}
	if m.Value != nil {
		t.Errorf("recorded value for nil must stay nil, got %q", *m.Value)
	}
	if m.ValueMatch {
		t.Error("value_match must be false for nil values")
	}
}

func TestClassifyCaseSensitivity(t *testing.T) {
	set := rules.Default()
	if got := Classify(set, []string{"PHONE_NO"}, []any{"x"}); len(got["phone number"]) != 1 {
		t.Errorf("case-insensitive match on PHONE_NO expected, got %v", got)
	}

	set.Settings.CaseSensitive = true
	if got := Classify(set, []string{"PHONE_NO"}, []any{"x"}); len(got) != 0 {
		t.Errorf("case-sensitive mode must not match PHONE_NO, got %v", got)
	}
}

func TestClassifyTruncatesDisplayValue(t *testing.T) {
	set := rules.Default()
	set.Settings.MaxValueLength = 200
	long := "mobile-" + strings.Repeat("x", 80)

	result := Classify(set, []string{"mobile_desc"}, []any{long})
	m := result["phone number"]["mobile_desc"]
	if m.Value == nil {
		t.Fatal("expected a recorded value")
	}
	if len([]rune(*m.Value)) != 53 { // 50 runes + "..."
		t.Errorf("expected 50 runes plus ellipsis, got %d: %q", len([]rune(*m.Value)), *m.Value)
	}
	if !strings.HasSuffix(*m.Value, "...") {
		t.Errorf("truncated value must end with ellipsis: %q", *m.Value)
	}
}

func TestClassifyMultipleCategoriesOneColumn(t *testing.T) {
	set := rules.Default()
	// 16 digits: matches the bank card pattern; the column name also says phone.
	result := Classify(set, []string{"phone"}, []any{"6222020200112233"})

	if m := result["bank card"]["phone"]; !m.ValueMatch {
		t.Error("bank card value_match expected for a 16-digit value")
	}
	if m := result["phone number"]["phone"]; !m.FieldMatch || m.ValueMatch {
		t.Error("phone number should match by field name only")
	}
}

func TestClassifyTrimsBeforeMatching(t *testing.T) {
	set := rules.Default()
	result := Classify(set, []string{"contact"}, []any{"  13812345678  "})

	m, ok := result["phone number"]["contact"]
	if !ok {
		t.Fatal("expected a value match after trimming")
	}
	if !m.ValueMatch {
		t.Error("value_match should be true for a padded conforming value")
	}
	if m.Value == nil || *m.Value != "13812345678" {
		t.Errorf("recorded value should be trimmed, got %v", m.Value)
	}
}
