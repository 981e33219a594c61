// Package model holds the shared types that flow between the audit stages:
// per-table classification results, user privilege grants, and risk findings.
package model

import "github.com/dbtrawl/dbtrawl/internal/classify"

// Severity levels for risk findings.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Finding types.
const (
	TypeSensitiveData = "sensitive-data"
	TypePrivilege     = "privilege"
)

// NotApplicable marks finding cells that carry no value.
const NotApplicable = "-"

// TableResult is the audit outcome for one table: a snapshot of one sampled
// record, the sensitive-data classification over it, and the confirmation
// verdict. A failed describe/sample/count sets Err and leaves the rest
// empty; failure is isolated at table granularity.
type TableResult struct {
	Table     string
	Columns   map[string]any
	Sensitive classify.Result
	Confirmed bool
	RowCount  int64
	Err       string
}

// UserGrant is one row of the privilege table. Flags are rendered "yes"/"no"
// at the source boundary, keyed by the names in PrivilegeColumns.
type UserGrant struct {
	User  string
	Host  string
	Flags map[string]string
}

// PrivilegeColumns returns the fixed flag order used by privilege sheets
// and the aggregator.
func PrivilegeColumns() []string {
	return []string{
		"select", "insert", "update", "delete",
		"create", "drop", "reload", "shutdown",
		"process", "file", "grant", "references",
		"index", "alter", "show-databases", "super",
		"create-temp-tables", "lock-tables", "execute",
		"replication-slave", "replication-client",
	}
}

// Finding is one row of the aggregated risk report.
type Finding struct {
	Type           string
	Severity       string
	Subject        string
	Table          string
	Fields         string
	SensitiveTypes string
	Description    string
	Detected       string
	Records        string
	Remediation    string
}

// SeverityRank orders severities for sorting: high before medium before
// low, anything unknown last.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 99
	}
}
