package source

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dbtrawl/dbtrawl/internal/model"
)

// systemSchemas are excluded from ListDatabases.
var systemSchemas = map[string]bool{
	"information_schema": true,
	"performance_schema": true,
	"mysql":              true,
	"sys":                true,
}

// MySQL audits a MySQL server over go-sql-driver.
type MySQL struct {
	db *sql.DB
}

// OpenMySQL connects and verifies the connection.
func OpenMySQL(ctx context.Context, host string, port int, user, password string) (*MySQL, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/?timeout=10s&readTimeout=30s&writeTimeout=30s&charset=utf8mb4",
		user, password, host, port)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s:%d: %w", host, port, err)
	}
	return &MySQL{db: db}, nil
}

// Close releases the connection pool.
func (m *MySQL) Close() error { return m.db.Close() }

// ListDatabases returns non-system database names.
func (m *MySQL) ListDatabases(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close()

	var dbs []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if !systemSchemas[name] {
			dbs = append(dbs, name)
		}
	}
	return dbs, rows.Err()
}

// ListTables returns the table names of one database.
func (m *MySQL) ListTables(ctx context.Context, db string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, "SHOW TABLES FROM "+quoteIdent(db))
	if err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", db, err)
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

// DescribeColumns returns column names in ordinal position order, matching
// the order SELECT * produces.
func (m *MySQL) DescribeColumns(ctx context.Context, db, table string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position`,
		db, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s.%s: %w", db, table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// RowCount returns the table's total row count.
func (m *MySQL) RowCount(ctx context.Context, db, table string) (int64, error) {
	var n int64
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", quoteIdent(db), quoteIdent(table))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s.%s: %w", db, table, err)
	}
	return n, nil
}

// SampleRow fetches one row at a random offset. Nil for empty tables.
func (m *MySQL) SampleRow(ctx context.Context, db, table string, total int64) ([]any, error) {
	if total <= 0 {
		return nil, nil
	}
	offset := rand.Int63n(total)
	rows, err := m.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s.%s LIMIT 1 OFFSET %d", quoteIdent(db), quoteIdent(table), offset))
	if err != nil {
		return nil, fmt.Errorf("sample %s.%s: %w", db, table, err)
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

// mysqlPrivColumns maps mysql.user columns to the canonical flag names, in
// PrivilegeColumns order.
var mysqlPrivColumns = []string{
	"Select_priv", "Insert_priv", "Update_priv", "Delete_priv",
	"Create_priv", "Drop_priv", "Reload_priv", "Shutdown_priv",
	"Process_priv", "File_priv", "Grant_priv", "References_priv",
	"Index_priv", "Alter_priv", "Show_db_priv", "Super_priv",
	"Create_tmp_table_priv", "Lock_tables_priv", "Execute_priv",
	"Repl_slave_priv", "Repl_client_priv",
}

// ListUsers reads mysql.user and renders Y/N flags as yes/no.
func (m *MySQL) ListUsers(ctx context.Context) ([]model.UserGrant, error) {
	query := fmt.Sprintf("SELECT User, Host, %s FROM mysql.user ORDER BY User, Host",
		strings.Join(mysqlPrivColumns, ", "))
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	names := model.PrivilegeColumns()
	var users []model.UserGrant
	for rows.Next() {
		dest := make([]any, 2+len(mysqlPrivColumns))
		var user, host string
		dest[0], dest[1] = &user, &host
		raw := make([]sql.NullString, len(mysqlPrivColumns))
		for i := range raw {
			dest[2+i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		flags := make(map[string]string, len(names))
		for i, name := range names {
			if raw[i].String == "Y" {
				flags[name] = "yes"
			} else {
				flags[name] = "no"
			}
		}
		users = append(users, model.UserGrant{User: user, Host: host, Flags: flags})
	}
	return users, rows.Err()
}

// quoteIdent backtick-quotes an identifier for statements that cannot take
// placeholders.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
