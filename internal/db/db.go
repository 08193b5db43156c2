// Package db provides database persistence for opengrid.
//
// A single studio database holds projects, assets, shots, tasks and versions.
// The same code runs against an embedded SQLite file or a PostgreSQL server;
// queries are written with "?" placeholders and rebound per dialect.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/randalmurphal/opengrid/internal/db/driver"
)

//go:embed schema/sqlite/*.sql schema/postgres/*.sql
var embeddedSchema embed.FS

// schemaName is the file stem applied by EnsureSchema for both dialects.
const schemaName = "studio"

// schemaFS returns the embedded schema rooted at the dialect directories.
func schemaFS() fs.FS {
	sub, err := fs.Sub(embeddedSchema, "schema")
	if err != nil {
		panic(fmt.Sprintf("embedded schema: %v", err))
	}
	return sub
}

// DB wraps a database connection with driver abstraction.
type DB struct {
	driver driver.Driver
	path   string
}

// Open opens a database, picking the dialect from the DSN.
// SQLite paths get their parent directory created.
func Open(dsn string) (*DB, error) {
	return OpenWithDialect(dsn, driver.DetectDialect(dsn))
}

// OpenInMemory opens an in-memory SQLite database.
// Each call creates a new isolated database.
func OpenInMemory() (*DB, error) {
	drv, err := driver.New(driver.DialectSQLite)
	if err != nil {
		return nil, err
	}

	if err := drv.Open(":memory:"); err != nil {
		return nil, err
	}

	return &DB{driver: drv, path: ":memory:"}, nil
}

// OpenWithDialect opens a database with a specific dialect.
func OpenWithDialect(dsn string, dialect driver.Dialect) (*DB, error) {
	if dialect == driver.DialectSQLite && dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	drv, err := driver.New(dialect)
	if err != nil {
		return nil, err
	}

	if err := drv.Open(dsn); err != nil {
		return nil, err
	}

	return &DB{driver: drv, path: dsn}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.driver.Close()
}

// Path returns the database DSN/path.
func (d *DB) Path() string {
	return d.path
}

// Driver returns the underlying driver for dialect-specific operations.
func (d *DB) Driver() driver.Driver {
	return d.driver
}

// Dialect returns the database dialect.
func (d *DB) Dialect() driver.Dialect {
	return d.driver.Dialect()
}

// EnsureSchema creates every table and index that does not exist yet.
// Calling it against an already-initialized database is a no-op.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if err := d.driver.ApplySchema(ctx, schemaFS(), schemaName); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ExecContext executes a query without returning rows.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.driver.Exec(ctx, d.driver.Rebind(query), args...)
}

// QueryContext executes a query that returns rows.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.driver.Query(ctx, d.driver.Rebind(query), args...)
}

// QueryRowContext executes a query that returns at most one row.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.driver.QueryRow(ctx, d.driver.Rebind(query), args...)
}

// BeginTx starts a transaction.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (driver.Tx, error) {
	return d.driver.BeginTx(ctx, opts)
}
