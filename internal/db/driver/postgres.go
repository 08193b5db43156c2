package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// SQLSTATE codes for integrity constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresDriver implements the Driver interface for PostgreSQL.
type PostgresDriver struct {
	db *sql.DB
}

// NewPostgres creates a new PostgreSQL driver.
func NewPostgres() *PostgresDriver {
	return &PostgresDriver{}
}

// Open opens a PostgreSQL database connection.
func (d *PostgresDriver) Open(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}

	d.db = db
	return nil
}

// Close closes the database connection.
func (d *PostgresDriver) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Exec executes a query without returning rows.
func (d *PostgresDriver) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (d *PostgresDriver) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row.
func (d *PostgresDriver) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (d *PostgresDriver) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}

// ApplySchema applies schema/postgres/{name}.sql.
func (d *PostgresDriver) ApplySchema(ctx context.Context, schemaFS fs.FS, name string) error {
	return applySchema(ctx, d.db, schemaFS, "postgres", name)
}

// Dialect returns the PostgreSQL dialect identifier.
func (d *PostgresDriver) Dialect() Dialect {
	return DialectPostgres
}

// Placeholder returns the PostgreSQL placeholder ($1, $2, etc.).
func (d *PostgresDriver) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// Rebind rewrites "?" placeholders to $1, $2, ...
func (d *PostgresDriver) Rebind(query string) string {
	return rebind(query, d.Placeholder)
}

// IsUniqueViolation reports SQLSTATE 23505.
func (d *PostgresDriver) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// Fallback: string match (covers wrapped errors that lose type info).
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate "+pgUniqueViolation) ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// IsForeignKeyViolation reports SQLSTATE 23503.
func (d *PostgresDriver) IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate "+pgForeignKeyViolation) ||
		strings.Contains(msg, "violates foreign key constraint")
}

// DB returns the underlying sql.DB for advanced operations.
func (d *PostgresDriver) DB() *sql.DB {
	return d.db
}
