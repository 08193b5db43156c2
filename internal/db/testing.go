// Package db provides test utilities for database operations.
//
// This file contains test helpers that should be used by all tests
// requiring database access. Using these helpers ensures:
// - In-memory databases for speed
// - Proper cleanup via t.Cleanup()
// - The same schema path as production (EnsureSchema)
package db

import (
	"context"
	"os"
	"testing"

	"github.com/randalmurphal/opengrid/internal/db/driver"
)

// PostgresDSNEnv names the environment variable that enables PostgreSQL
// backed tests. When unset, those tests are skipped.
const PostgresDSNEnv = "OPENGRID_TEST_POSTGRES_DSN"

// NewTestStudioDB creates an in-memory studio database for testing.
// The database is automatically closed when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    sdb := db.NewTestStudioDB(t)
//	    // use sdb...
//	}
func NewTestStudioDB(t testing.TB) *StudioDB {
	t.Helper()

	sdb, err := OpenStudioInMemory(context.Background())
	if err != nil {
		t.Fatalf("create test studio db: %v", err)
	}

	t.Cleanup(func() {
		_ = sdb.Close()
	})

	return sdb
}

// NewTestPostgresStudioDB opens the PostgreSQL database named by
// OPENGRID_TEST_POSTGRES_DSN, or skips the test when it is unset.
// All studio tables are truncated before the test runs.
func NewTestPostgresStudioDB(t testing.TB) *StudioDB {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	ctx := context.Background()
	sdb, err := OpenStudioWithDialect(ctx, dsn, driver.DialectPostgres)
	if err != nil {
		t.Fatalf("open postgres studio db: %v", err)
	}
	t.Cleanup(func() {
		_ = sdb.Close()
	})

	if _, err := sdb.ExecContext(ctx, `TRUNCATE versions, tasks, shots, assets, projects RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate studio tables: %v", err)
	}
	return sdb
}
