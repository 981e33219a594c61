// Package auditor drives one audit run per datasource: enumerate users and
// databases, sample and classify every table, aggregate risk findings, and
// write the report. Failures degrade: a broken table yields an error-marker
// result, a broken datasource is skipped, and the run continues.
package auditor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dbtrawl/dbtrawl/internal/aggregate"
	"github.com/dbtrawl/dbtrawl/internal/alert"
	"github.com/dbtrawl/dbtrawl/internal/classify"
	"github.com/dbtrawl/dbtrawl/internal/dsconfig"
	"github.com/dbtrawl/dbtrawl/internal/model"
	"github.com/dbtrawl/dbtrawl/internal/report"
	"github.com/dbtrawl/dbtrawl/internal/rules"
	"github.com/dbtrawl/dbtrawl/internal/runlog"
	"github.com/dbtrawl/dbtrawl/internal/source"
)

// Deps wires the auditor's collaborators. Open, NewSink, and Now default to
// the real implementations; tests swap them.
type Deps struct {
	Rules   *rules.Set
	OutDir  string
	RunLog  string // run log path; empty disables run logging
	Alerts  *alert.Dispatcher
	Log     io.Writer
	Open    func(ctx context.Context, ds dsconfig.Datasource) (source.Source, error)
	NewSink func(dir, datasource string, now time.Time) (report.Sink, error)
	Now     func() time.Time
}

func (d *Deps) open(ctx context.Context, ds dsconfig.Datasource) (source.Source, error) {
	if d.Open != nil {
		return d.Open(ctx, ds)
	}
	return OpenSource(ctx, ds)
}

func (d *Deps) newSink(dir, datasource string, now time.Time) (report.Sink, error) {
	if d.NewSink != nil {
		return d.NewSink(dir, datasource, now)
	}
	return report.NewXLSX(dir, datasource, now)
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// OpenSource connects to a datasource with the driver its config names.
func OpenSource(ctx context.Context, ds dsconfig.Datasource) (source.Source, error) {
	switch ds.Driver {
	case dsconfig.DriverSQLite:
		return source.OpenSQLite(ctx, ds.Name, ds.Host)
	default:
		return source.OpenMySQL(ctx, ds.Host, ds.Port, ds.User, ds.Password)
	}
}

// Run audits one datasource and returns the report path.
func Run(ctx context.Context, ds dsconfig.Datasource, deps Deps) (string, error) {
	fmt.Fprintf(deps.Log, "auditor: starting %s\n", ds.Name)

	src, err := deps.open(ctx, ds)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", ds.Name, err)
	}
	defer src.Close()

	users, err := src.ListUsers(ctx)
	if err != nil {
		// Privilege access is often restricted; audit the schemas anyway.
		fmt.Fprintf(deps.Log, "auditor: %s: list users: %v\n", ds.Name, err)
		users = nil
	}

	dbs, err := src.ListDatabases(ctx)
	if err != nil {
		return "", fmt.Errorf("list databases in %s: %w", ds.Name, err)
	}

	results := make(map[string][]model.TableResult, len(dbs))
	var reports []aggregate.TableReport
	tableCount := 0

	for _, db := range dbs {
		tables, err := src.ListTables(ctx, db)
		if err != nil {
			fmt.Fprintf(deps.Log, "auditor: %s: list tables in %s: %v\n", ds.Name, db, err)
			results[db] = nil
			continue
		}
		for _, table := range tables {
			tr := auditTable(ctx, src, deps.Rules, db, table, deps.Log)
			results[db] = append(results[db], tr)
			reports = append(reports, aggregate.TableReport{
				Database:  db,
				Table:     tr.Table,
				Sensitive: tr.Sensitive,
				Confirmed: tr.Confirmed,
				RowCount:  tr.RowCount,
			})
			tableCount++
		}
	}

	findings := aggregate.Summarize(reports, users)

	sink, err := deps.newSink(deps.OutDir, ds.Name, deps.now())
	if err != nil {
		return "", fmt.Errorf("create report for %s: %w", ds.Name, err)
	}
	if err := sink.WriteSummary(findings); err != nil {
		return "", err
	}
	if err := sink.WriteUsers(users); err != nil {
		return "", err
	}
	for _, db := range dbs {
		if err := sink.WriteDatabase(db, results[db]); err != nil {
			return "", err
		}
	}
	path, err := sink.Close()
	if err != nil {
		return "", err
	}

	runID := runlog.NewRunID()
	logRun(deps, runID, ds.Name, len(dbs), tableCount, findings, path)
	dispatchAlerts(deps, runID, ds.Name, findings)

	fmt.Fprintf(deps.Log, "auditor: %s done, %d findings, report %s\n",
		ds.Name, len(findings), path)
	return path, nil
}

// RunAll audits every datasource sequentially. A failed datasource is
// logged and skipped; the returned paths cover the reports actually
// produced, possibly none.
func RunAll(ctx context.Context, datasources []dsconfig.Datasource, deps Deps) []string {
	var paths []string
	for _, ds := range datasources {
		if ctx.Err() != nil {
			break
		}
		path, err := Run(ctx, ds, deps)
		if err != nil {
			fmt.Fprintf(deps.Log, "auditor: %v, skipped\n", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// auditTable samples, classifies, and confirms one table. Any failure
// produces an error-marker result for this table only.
func auditTable(ctx context.Context, src source.Source, set *rules.Set, db, table string, logw io.Writer) model.TableResult {
	fail := func(stage string, err error) model.TableResult {
		fmt.Fprintf(logw, "auditor: %s.%s: %s: %v\n", db, table, stage, err)
		return model.TableResult{Table: table, Err: err.Error()}
	}

	columns, err := src.DescribeColumns(ctx, db, table)
	if err != nil {
		return fail("describe", err)
	}
	total, err := src.RowCount(ctx, db, table)
	if err != nil {
		return fail("count", err)
	}
	record, err := src.SampleRow(ctx, db, table, total)
	if err != nil {
		return fail("sample", err)
	}

	// An empty table still gets its field names checked: classify over an
	// all-nil record of matching length.
	if record == nil {
		record = make([]any, len(columns))
	}

	snapshot := make(map[string]any, len(columns))
	for i, col := range columns {
		if i < len(record) {
			snapshot[col] = classify.DisplayValue(record[i])
		}
	}

	sensitive := classify.Classify(set, columns, record)
	return model.TableResult{
		Table:     table,
		Columns:   snapshot,
		Sensitive: sensitive,
		Confirmed: classify.Confirm(set, sensitive),
		RowCount:  total,
	}
}

func logRun(deps Deps, runID, datasource string, dbs, tables int, findings []model.Finding, path string) {
	if deps.RunLog == "" {
		return
	}
	lg, err := runlog.Open(deps.RunLog)
	if err != nil {
		fmt.Fprintf(deps.Log, "auditor: %v\n", err)
		return
	}
	defer lg.Close()

	high, medium := 0, 0
	for _, f := range findings {
		switch f.Severity {
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		}
	}
	if err := lg.Append(runlog.Entry{
		RunID:      runID,
		Datasource: datasource,
		Databases:  dbs,
		Tables:     tables,
		Findings:   len(findings),
		High:       high,
		Medium:     medium,
		Report:     path,
	}); err != nil {
		fmt.Fprintf(deps.Log, "auditor: %v\n", err)
	}
}

func dispatchAlerts(deps Deps, runID, datasource string, findings []model.Finding) {
	if deps.Alerts == nil {
		return
	}
	ts := deps.now().UTC().Format(runlog.TimestampFormat)
	for _, f := range findings {
		table := f.Table
		if table == model.NotApplicable {
			table = ""
		}
		deps.Alerts.Dispatch(alert.Event{
			Timestamp:   ts,
			RunID:       runID,
			Datasource:  datasource,
			Severity:    f.Severity,
			Type:        f.Type,
			Subject:     f.Subject,
			Table:       table,
			Description: f.Description,
		})
	}
}
