package rules

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	var logbuf bytes.Buffer
	s := Load(filepath.Join(t.TempDir(), "nope.yaml"), &logbuf)

	if len(s.Rules) != 4 {
		t.Fatalf("expected default rule set, got %d rules", len(s.Rules))
	}
	if !strings.Contains(logbuf.String(), "built-in defaults") {
		t.Errorf("expected a fallback warning, got: %q", logbuf.String())
	}
}

func TestLoadMalformedFileFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("rules: [not: a: map"), 0644); err != nil {
		t.Fatal(err)
	}

	var logbuf bytes.Buffer
	s := Load(path, &logbuf)

	if len(s.Rules) != 4 {
		t.Fatalf("expected default rule set after parse failure, got %d rules", len(s.Rules))
	}
	if !strings.Contains(logbuf.String(), "built-in defaults") {
		t.Errorf("expected a fallback warning, got: %q", logbuf.String())
	}
}

func TestLoadEmptyRulesFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("settings:\n  case_sensitive: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s := Load(path, &bytes.Buffer{})
	if len(s.Rules) != 4 {
		t.Fatalf("expected default rule set for an empty rules map, got %d rules", len(s.Rules))
	}
	if s.Settings.CaseSensitive {
		t.Error("fallback must use default settings, not the partial file's")
	}
}

func TestLoadSkipsMalformedPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	yaml := `
rules:
  broken:
    field_keywords: [thing]
    patterns: ['[unclosed', '^\d{4}$']
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	var logbuf bytes.Buffer
	s := Load(path, &logbuf)

	r, ok := s.Rule("broken")
	if !ok {
		t.Fatal("rule with one bad pattern must still load")
	}
	if len(r.Compiled()) != 1 {
		t.Fatalf("expected 1 compiled pattern after skipping the bad one, got %d", len(r.Compiled()))
	}
	if !strings.Contains(logbuf.String(), "invalid pattern") {
		t.Errorf("expected a pattern warning, got: %q", logbuf.String())
	}
}

func TestLoadDefaultsAbsentSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	yaml := `
rules:
  phone number:
    field_keywords: [phone]
    patterns: ['^1[3-9]\d{9}$']
  email:
    field_keywords: [email]
    patterns: ['^\S+@\S+$']
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	s := Load(path, &bytes.Buffer{})
	if s.Settings.MaxValueLength != 100 {
		t.Errorf("absent max_value_length should default to 100, got %d", s.Settings.MaxValueLength)
	}
	// No enabled list means everything loaded is active.
	if len(s.Enabled()) != 2 {
		t.Errorf("expected both loaded rules enabled, got %v", s.Enabled())
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	s := Load("", &bytes.Buffer{})
	if len(s.Rules) != 4 {
		t.Fatalf("expected default rule set, got %d rules", len(s.Rules))
	}
}
