// Package source abstracts the database calls the audit consumes: schema
// enumeration, single-row sampling, and privilege listing. Implementations
// exist for MySQL and SQLite.
package source

import (
	"context"

	"github.com/dbtrawl/dbtrawl/internal/model"
)

// SchemaSource enumerates databases, tables, and columns, and samples one
// row per table.
type SchemaSource interface {
	// ListDatabases returns business database names, system databases
	// pre-filtered.
	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, db string) ([]string, error)
	// DescribeColumns returns column names in table order.
	DescribeColumns(ctx context.Context, db, table string) ([]string, error)
	RowCount(ctx context.Context, db, table string) (int64, error)
	// SampleRow returns one random row aligned with DescribeColumns, or nil
	// when the table is empty. total is the row count already fetched.
	SampleRow(ctx context.Context, db, table string, total int64) ([]any, error)
}

// PrivilegeSource lists the server's user grants.
type PrivilegeSource interface {
	ListUsers(ctx context.Context) ([]model.UserGrant, error)
}

// Source is one connected datasource.
type Source interface {
	SchemaSource
	PrivilegeSource
	Close() error
}

// scanValues reads the current row of a *sql.Rows-like scanner into []any,
// converting []byte cells to string.
func scanValues(scan func(...any) error, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range vals {
		if b, ok := v.([]byte); ok {
			vals[i] = string(b)
		}
	}
	return vals, nil
}
