package source

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/dbtrawl/dbtrawl/internal/model"
)

// SQLite audits a SQLite file. A SQLite datasource is a single logical
// database, so ListDatabases returns the datasource name and ListUsers is
// empty.
type SQLite struct {
	db   *sql.DB
	name string
}

// OpenSQLite opens a database file and verifies it is readable.
func OpenSQLite(ctx context.Context, name, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &SQLite{db: db, name: name}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error { return s.db.Close() }

// ListDatabases returns the single logical database.
func (s *SQLite) ListDatabases(ctx context.Context) ([]string, error) {
	return []string{s.name}, nil
}

// ListTables lists user tables from sqlite_master.
func (s *SQLite) ListTables(ctx context.Context, db string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// DescribeColumns reads column names from PRAGMA table_info.
func (s *SQLite) DescribeColumns(ctx context.Context, db, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+quoteSQLiteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// RowCount returns the table's total row count.
func (s *SQLite) RowCount(ctx context.Context, db, table string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+quoteSQLiteIdent(table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// SampleRow fetches one row at a random offset. Nil for empty tables.
func (s *SQLite) SampleRow(ctx context.Context, db, table string, total int64) ([]any, error) {
	if total <= 0 {
		return nil, nil
	}
	offset := rand.Int63n(total)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT 1 OFFSET %d", quoteSQLiteIdent(table), offset))
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	return scanValues(rows.Scan, len(cols))
}

// ListUsers returns no grants. SQLite has no privilege table.
func (s *SQLite) ListUsers(ctx context.Context) ([]model.UserGrant, error) {
	return nil, nil
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
