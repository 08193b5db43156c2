package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/randalmurphal/opengrid/internal/db/driver"
	grid "github.com/randalmurphal/opengrid/internal/errors"
)

// TxRunner provides a transactional execution interface.
type TxRunner interface {
	// RunInTx executes the given function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	RunInTx(ctx context.Context, fn func(tx *TxOps) error) error
}

// TxOps provides database operations within a transaction.
// Queries use "?" placeholders and are rebound for the active dialect.
// The context is stored and used for all operations, so cancellation
// propagates through the entire transaction.
type TxOps struct {
	tx     driver.Tx
	driver driver.Driver
	ctx    context.Context
}

// Exec executes a query within the transaction.
func (t *TxOps) Exec(query string, args ...any) (sql.Result, error) {
	return t.tx.Exec(t.ctx, t.driver.Rebind(query), args...)
}

// Query executes a query that returns rows within the transaction.
func (t *TxOps) Query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.Query(t.ctx, t.driver.Rebind(query), args...)
}

// QueryRow executes a query that returns at most one row within the transaction.
func (t *TxOps) QueryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRow(t.ctx, t.driver.Rebind(query), args...)
}

// Context returns the context associated with this transaction.
func (t *TxOps) Context() context.Context {
	return t.ctx
}

// Dialect returns the database dialect.
func (t *TxOps) Dialect() driver.Dialect {
	return t.driver.Dialect()
}

// StudioDB provides entity operations on a studio database.
type StudioDB struct {
	*DB
}

// OpenStudio opens the studio database at dsn and ensures its schema.
// A postgres:// URL selects PostgreSQL; anything else is a SQLite path.
func OpenStudio(ctx context.Context, dsn string) (*StudioDB, error) {
	return OpenStudioWithDialect(ctx, dsn, driver.DetectDialect(dsn))
}

// OpenStudioWithDialect opens the studio database with a specific dialect.
func OpenStudioWithDialect(ctx context.Context, dsn string, dialect driver.Dialect) (*StudioDB, error) {
	db, err := OpenWithDialect(dsn, dialect)
	if err != nil {
		return nil, grid.ErrStorage("open database", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, grid.ErrStorage("ensure schema", err)
	}

	return &StudioDB{DB: db}, nil
}

// OpenStudioInMemory opens a fresh in-memory SQLite studio database.
func OpenStudioInMemory(ctx context.Context) (*StudioDB, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, grid.ErrStorage("open database", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, grid.ErrStorage("ensure schema", err)
	}

	return &StudioDB{DB: db}, nil
}

// RunInTx executes the given function within a database transaction.
// If fn returns an error, the transaction is rolled back.
// If fn returns nil, the transaction is committed.
func (s *StudioDB) RunInTx(ctx context.Context, fn func(tx *TxOps) error) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txOps := &TxOps{
		tx:     tx,
		driver: s.driver,
		ctx:    ctx,
	}

	if err := fn(txOps); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Ensure StudioDB implements TxRunner
var _ TxRunner = (*StudioDB)(nil)

// parentRef names the row a REFERENCES column points at.
type parentRef struct {
	kind string
	id   int64
}

// classify turns a raw driver error into a GridError. Errors that already
// carry a code pass through unchanged. kind and key describe the row being
// written.
func (s *StudioDB) classify(op, kind, key string, parent *parentRef, err error) error {
	if err == nil {
		return nil
	}
	if grid.AsGridError(err) != nil {
		return err
	}
	switch {
	case s.driver.IsUniqueViolation(err):
		return grid.ErrUniqueViolation(kind, key, err)
	case parent != nil && s.driver.IsForeignKeyViolation(err):
		return grid.ErrNotFound(parent.kind, strconv.FormatInt(parent.id, 10)).WithCause(err)
	default:
		return grid.ErrStorage(op, err)
	}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// countRows returns SELECT COUNT(*) for a table.
func (s *StudioDB) countRows(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, grid.ErrStorage("count "+table, err)
	}
	return n, nil
}

// Stats returns row counts for every table.
func (s *StudioDB) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	targets := []struct {
		table string
		dst   *int
	}{
		{"projects", &st.Projects},
		{"assets", &st.Assets},
		{"shots", &st.Shots},
		{"tasks", &st.Tasks},
		{"versions", &st.Versions},
	}
	for _, target := range targets {
		n, err := s.countRows(ctx, target.table)
		if err != nil {
			return nil, err
		}
		*target.dst = n
	}
	return &st, nil
}
