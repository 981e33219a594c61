package model

import "testing"

func TestSeverityRank(t *testing.T) {
	if SeverityRank(SeverityHigh) >= SeverityRank(SeverityMedium) {
		t.Error("high must rank before medium")
	}
	if SeverityRank(SeverityMedium) >= SeverityRank(SeverityLow) {
		t.Error("medium must rank before low")
	}
	if SeverityRank("bizarre") <= SeverityRank(SeverityLow) {
		t.Error("unknown severities must rank last")
	}
}

func TestPrivilegeColumnsShape(t *testing.T) {
	cols := PrivilegeColumns()
	if len(cols) != 21 {
		t.Fatalf("expected 21 privilege flags, got %d", len(cols))
	}
	if cols[0] != "select" || cols[len(cols)-1] != "replication-client" {
		t.Errorf("unexpected flag order: first %q, last %q", cols[0], cols[len(cols)-1])
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c] {
			t.Errorf("duplicate flag %q", c)
		}
		seen[c] = true
	}
}
