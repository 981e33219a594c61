package aggregate

import (
	"strings"
	"testing"

	"github.com/dbtrawl/dbtrawl/internal/classify"
	"github.com/dbtrawl/dbtrawl/internal/model"
)

func strptr(s string) *string { return &s }

func confirmedTable(db, table string, matches map[string]map[string]classify.Match, rows int64) TableReport {
	return TableReport{
		Database:  db,
		Table:     table,
		Sensitive: matches,
		Confirmed: true,
		RowCount:  rows,
	}
}

func TestSummarizeConfirmedTable(t *testing.T) {
	tables := []TableReport{
		confirmedTable("crm", "customers", map[string]map[string]classify.Match{
			"phone number": {
				"phone": {Value: strptr("13812345678"), FieldMatch: true, ValueMatch: true},
			},
		}, 1200),
	}

	findings := Summarize(tables, nil)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Type != model.TypeSensitiveData || f.Severity != model.SeverityHigh {
		t.Errorf("unexpected type/severity: %s/%s", f.Type, f.Severity)
	}
	if f.Subject != "crm" || f.Table != "customers" {
		t.Errorf("unexpected subject/table: %s/%s", f.Subject, f.Table)
	}
	if f.Fields != "phone(phone number)" {
		t.Errorf("unexpected fields: %q", f.Fields)
	}
	if f.Records != "1200" {
		t.Errorf("unexpected record count: %q", f.Records)
	}
	if f.Detected != "13812345678"[:10]+"..." {
		t.Errorf("sample values must be capped at 10 runes: %q", f.Detected)
	}
}

func TestSummarizeSkipsUnconfirmedTables(t *testing.T) {
	tables := []TableReport{
		{
			Database: "crm", Table: "suspects",
			Sensitive: map[string]map[string]classify.Match{
				"phone number": {"phone": {FieldMatch: true}},
			},
			Confirmed: false,
		},
	}
	if findings := Summarize(tables, nil); len(findings) != 0 {
		t.Fatalf("unconfirmed tables must not produce findings, got %v", findings)
	}
}

func TestSummarizeCapsFieldLabels(t *testing.T) {
	tables := []TableReport{
		confirmedTable("crm", "contacts", map[string]map[string]classify.Match{
			"phone number": {
				"phone1": {Value: strptr("13812345678"), ValueMatch: true},
				"phone2": {Value: strptr("13812345679"), ValueMatch: true},
				"phone3": {Value: strptr("13812345670"), ValueMatch: true},
				"phone4": {Value: strptr("13812345671"), ValueMatch: true},
				"phone5": {Value: strptr("13812345672"), ValueMatch: true},
			},
		}, 10),
	}

	f := Summarize(tables, nil)[0]
	if !strings.Contains(f.Fields, "and 2 more fields") {
		t.Errorf("expected 'and 2 more fields' suffix, got %q", f.Fields)
	}
	if strings.Count(f.Fields, "(phone number)") != 3 {
		t.Errorf("expected exactly 3 labels shown, got %q", f.Fields)
	}
	// 5 samples recorded, 2 shown, ellipsis marks the rest.
	if !strings.HasSuffix(f.Detected, "...") {
		t.Errorf("expected sample-list ellipsis, got %q", f.Detected)
	}
}

func TestSummarizeSortsBySeverityThenType(t *testing.T) {
	users := []model.UserGrant{
		// medium: wildcard host with DML only
		{User: "app", Host: "%", Flags: map[string]string{"select": "yes"}},
		// high: super
		{User: "root2", Host: "localhost", Flags: map[string]string{"super": "yes"}},
	}
	tables := []TableReport{
		confirmedTable("crm", "customers", map[string]map[string]classify.Match{
			"phone number": {"phone": {Value: strptr("13812345678"), ValueMatch: true}},
		}, 5),
	}

	findings := Summarize(tables, users)
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(findings))
	}

	sevs := []string{findings[0].Severity, findings[1].Severity, findings[2].Severity}
	if sevs[0] != model.SeverityHigh || sevs[1] != model.SeverityHigh || sevs[2] != model.SeverityMedium {
		t.Fatalf("expected high, high, medium, got %v", sevs)
	}
	// Within equal severity the tie-break is the type name, so "privilege"
	// sorts before "sensitive-data".
	if findings[0].Type != model.TypePrivilege || findings[1].Type != model.TypeSensitiveData {
		t.Errorf("expected privilege before sensitive-data at equal severity, got %s then %s",
			findings[0].Type, findings[1].Type)
	}
}

func TestSummarizeStableWithinSeverity(t *testing.T) {
	// Two confirmed tables at equal severity and type must keep input order.
	tables := []TableReport{
		confirmedTable("crm", "zeta", map[string]map[string]classify.Match{
			"phone number": {"phone": {Value: strptr("13812345678"), ValueMatch: true}},
		}, 1),
		confirmedTable("crm", "alpha", map[string]map[string]classify.Match{
			"phone number": {"phone": {Value: strptr("13812345678"), ValueMatch: true}},
		}, 1),
	}

	findings := Summarize(tables, nil)
	if findings[0].Table != "zeta" || findings[1].Table != "alpha" {
		t.Errorf("equal-rank findings must preserve input order, got %s then %s",
			findings[0].Table, findings[1].Table)
	}
}

func TestSeverityRankOrdersUnknownLast(t *testing.T) {
	if model.SeverityRank("critical") <= model.SeverityRank(model.SeverityLow) {
		t.Error("unknown severities must sort after low")
	}
}
