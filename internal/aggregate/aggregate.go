// Package aggregate turns per-table classification results and user
// privilege grants into a ranked list of risk findings.
package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dbtrawl/dbtrawl/internal/classify"
	"github.com/dbtrawl/dbtrawl/internal/model"
)

const (
	// maxFieldLabels caps how many column(category) labels a finding shows.
	maxFieldLabels = 3
	// maxSampleValues caps how many detected values a finding shows.
	maxSampleValues = 2
	// sampleValueMax caps each shown sample value, in runes.
	sampleValueMax = 10
)

// TableReport is the aggregator's view of one audited table.
type TableReport struct {
	Database  string
	Table     string
	Sensitive classify.Result
	Confirmed bool
	RowCount  int64
}

// Summarize produces the findings list: one high finding per confirmed
// table, plus privilege findings per user. The result is sorted by severity
// rank, then finding type, stable otherwise.
func Summarize(tables []TableReport, users []model.UserGrant) []model.Finding {
	var findings []model.Finding
	findings = append(findings, sensitiveFindings(tables)...)
	findings = append(findings, privilegeFindings(users)...)

	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := model.SeverityRank(findings[i].Severity), model.SeverityRank(findings[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return findings[i].Type < findings[j].Type
	})
	return findings
}

// sensitiveFindings emits one finding per confirmed table, summarizing the
// categories found, up to three column(category) labels, and up to two
// sample values.
func sensitiveFindings(tables []TableReport) []model.Finding {
	var findings []model.Finding

	for _, t := range tables {
		if !t.Confirmed || len(t.Sensitive) == 0 {
			continue
		}

		cats := make([]string, 0, len(t.Sensitive))
		for cat := range t.Sensitive {
			cats = append(cats, cat)
		}
		sort.Strings(cats)

		var labels []string
		var samples []string
		for _, cat := range cats {
			cols := make([]string, 0, len(t.Sensitive[cat]))
			for col := range t.Sensitive[cat] {
				cols = append(cols, col)
			}
			sort.Strings(cols)
			for _, col := range cols {
				labels = append(labels, fmt.Sprintf("%s(%s)", col, cat))
				if v := t.Sensitive[cat][col].Value; v != nil {
					samples = append(samples, classify.Truncate(*v, sampleValueMax))
				}
			}
		}

		typesStr := strings.Join(cats, ", ")
		fieldsStr := strings.Join(labels[:min(len(labels), maxFieldLabels)], ", ")
		if extra := len(labels) - maxFieldLabels; extra > 0 {
			fieldsStr += fmt.Sprintf(" and %d more fields", extra)
		}
		detected := strings.Join(samples[:min(len(samples), maxSampleValues)], ", ")
		if len(samples) > maxSampleValues {
			detected += "..."
		}

		findings = append(findings, model.Finding{
			Type:           model.TypeSensitiveData,
			Severity:       model.SeverityHigh,
			Subject:        t.Database,
			Table:          t.Table,
			Fields:         fieldsStr,
			SensitiveTypes: typesStr,
			Description:    fmt.Sprintf("table %s contains sensitive data: %s", t.Table, typesStr),
			Detected:       detected,
			Records:        strconv.FormatInt(t.RowCount, 10),
			Remediation:    fmt.Sprintf("encrypt or mask the columns holding %s", typesStr),
		})
	}
	return findings
}
