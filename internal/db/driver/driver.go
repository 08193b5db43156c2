// Package driver provides database driver abstraction for SQLite and PostgreSQL.
package driver

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Dialect represents the database dialect.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Driver abstracts database operations for SQLite and PostgreSQL.
type Driver interface {
	// Connection
	Open(dsn string) error
	Close() error

	// Queries. Placeholders are always written as "?" and rebound per dialect
	// by the caller via Rebind.
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row

	// Transactions
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)

	// ApplySchema executes the idempotent schema file {dialect}/{name}.sql
	// from schemaFS inside a single transaction.
	ApplySchema(ctx context.Context, schemaFS fs.FS, name string) error

	// Dialect-specific
	Dialect() Dialect
	Placeholder(index int) string // $1 for Postgres, ? for SQLite
	Rebind(query string) string

	// IsUniqueViolation reports whether err was raised by a UNIQUE or
	// PRIMARY KEY constraint.
	IsUniqueViolation(err error) bool
	// IsForeignKeyViolation reports whether err was raised by a REFERENCES
	// constraint.
	IsForeignKeyViolation(err error) bool

	// Raw access (for advanced operations)
	DB() *sql.DB
}

// Tx wraps database transactions.
type Tx interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Commit() error
	Rollback() error
}

// New creates a driver based on configuration.
func New(dialect Dialect) (Driver, error) {
	switch dialect {
	case DialectSQLite:
		return NewSQLite(), nil
	case DialectPostgres:
		return NewPostgres(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

// ParseDialect parses a dialect string.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unknown dialect: %s", s)
	}
}

// DetectDialect guesses the dialect from a DSN. URLs with a postgres scheme
// or libpq keyword strings select PostgreSQL; anything else is a SQLite path.
func DetectDialect(dsn string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return DialectPostgres
	default:
		return DialectSQLite
	}
}

// rebind rewrites "?" placeholders using the given placeholder function.
// Question marks inside single-quoted literals are left alone.
func rebind(query string, placeholder func(int) string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteString(placeholder(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitStatements splits a schema file on ";" and drops blank statements and
// "--" comment lines.
func splitStatements(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// applySchema runs every statement of schemaFS/{dir}/{name}.sql in one transaction.
func applySchema(ctx context.Context, db *sql.DB, schemaFS fs.FS, dir, name string) error {
	file := path.Join(dir, name+".sql")
	content, err := fs.ReadFile(schemaFS, file)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", file, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, stmt := range splitStatements(string(content)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply schema %s: %w", file, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema %s: %w", file, err)
	}
	return nil
}

// sqlTx wraps a sql.Tx to implement the Tx interface.
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *sqlTx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}
