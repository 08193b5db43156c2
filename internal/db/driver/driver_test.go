package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestNewDriver(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		wantErr bool
	}{
		{"sqlite", DialectSQLite, false},
		{"postgres", DialectPostgres, false},
		{"invalid", Dialect("invalid"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv, err := New(tt.dialect)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if drv == nil {
				t.Error("expected driver, got nil")
			}
		})
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{"sqlite", DialectSQLite, false},
		{"sqlite3", DialectSQLite, false},
		{"postgres", DialectPostgres, false},
		{"postgresql", DialectPostgres, false},
		{"pg", DialectPostgres, false},
		{"mysql", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		dsn  string
		want Dialect
	}{
		{"studio.db", DialectSQLite},
		{":memory:", DialectSQLite},
		{"/var/lib/opengrid/studio.db", DialectSQLite},
		{"postgres://localhost/opengrid", DialectPostgres},
		{"postgresql://user:pw@db:5432/opengrid?sslmode=disable", DialectPostgres},
		{"host=localhost dbname=opengrid user=og", DialectPostgres},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			if got := DetectDialect(tt.dsn); got != tt.want {
				t.Errorf("DetectDialect(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	pg := NewPostgres()
	lite := NewSQLite()

	tests := []struct {
		query  string
		wantPG string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM t WHERE a = ?", "SELECT * FROM t WHERE a = $1"},
		{"UPDATE t SET a = ?, b = ? WHERE id = ?", "UPDATE t SET a = $1, b = $2 WHERE id = $3"},
		{"SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
	}

	for _, tt := range tests {
		if got := pg.Rebind(tt.query); got != tt.wantPG {
			t.Errorf("postgres Rebind(%q) = %q, want %q", tt.query, got, tt.wantPG)
		}
		if got := lite.Rebind(tt.query); got != tt.query {
			t.Errorf("sqlite Rebind(%q) = %q, want unchanged", tt.query, got)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	content := `
-- leading comment
CREATE TABLE a (id INTEGER);

CREATE INDEX IF NOT EXISTS idx_a ON a(id);
  -- trailing comment
`
	stmts := splitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("stmts[0] = %q", stmts[0])
	}
	if stmts[1] != "CREATE INDEX IF NOT EXISTS idx_a ON a(id)" {
		t.Errorf("stmts[1] = %q", stmts[1])
	}
}

func TestSQLiteDriver(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	drv := NewSQLite()

	if err := drv.Open(dbPath); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = drv.Close() }()

	if drv.Dialect() != DialectSQLite {
		t.Errorf("Dialect() = %v, want %v", drv.Dialect(), DialectSQLite)
	}
	if drv.Placeholder(1) != "?" {
		t.Errorf("Placeholder(1) = %v, want ?", drv.Placeholder(1))
	}
	if drv.DB() == nil {
		t.Error("DB() returned nil")
	}

	ctx := context.Background()
	_, err := drv.Exec(ctx, "CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT UNIQUE)")
	if err != nil {
		t.Fatalf("Exec CREATE TABLE failed: %v", err)
	}

	var id int64
	if err := drv.QueryRow(ctx, "INSERT INTO test (name) VALUES (?) RETURNING id", "hello").Scan(&id); err != nil {
		t.Fatalf("INSERT RETURNING failed: %v", err)
	}
	if id != 1 {
		t.Errorf("returned id = %d, want 1", id)
	}

	// Duplicate triggers a classified unique violation
	_, err = drv.Exec(ctx, "INSERT INTO test (name) VALUES (?)", "hello")
	if err == nil {
		t.Fatal("expected UNIQUE constraint violation, got nil")
	}
	if !drv.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
	if !drv.IsUniqueViolation(fmt.Errorf("create: %w", err)) {
		t.Error("IsUniqueViolation should see through wrapping")
	}

	// Transactions
	tx, err := drv.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO test (name) VALUES (?)", "world"); err != nil {
		t.Errorf("tx.Exec failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Errorf("tx.Commit failed: %v", err)
	}

	tx2, err := drv.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	_, _ = tx2.Exec(ctx, "INSERT INTO test (name) VALUES (?)", "rollback")
	if err := tx2.Rollback(); err != nil {
		t.Errorf("tx.Rollback failed: %v", err)
	}

	var count int
	if err := drv.QueryRow(ctx, "SELECT COUNT(*) FROM test").Scan(&count); err != nil {
		t.Fatalf("count scan failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestSQLiteDriver_IsUniqueViolation(t *testing.T) {
	drv := NewSQLite()

	if drv.IsUniqueViolation(nil) {
		t.Error("nil error should not be a unique violation")
	}
	if drv.IsUniqueViolation(errors.New("no such table: projects")) {
		t.Error("unrelated error classified as unique violation")
	}
}

func TestSQLiteDriver_IsForeignKeyViolation(t *testing.T) {
	drv := NewSQLite()
	if err := drv.Open(":memory:"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = drv.Close() }()

	ctx := context.Background()
	if _, err := drv.Exec(ctx, "CREATE TABLE parent (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create parent: %v", err)
	}
	if _, err := drv.Exec(ctx, "CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parent(id))"); err != nil {
		t.Fatalf("create child: %v", err)
	}

	_, err := drv.Exec(ctx, "INSERT INTO child (parent_id) VALUES (?)", 99)
	if err == nil {
		t.Fatal("expected FOREIGN KEY violation, got nil")
	}
	if !drv.IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = false, want true", err)
	}
	if drv.IsUniqueViolation(err) {
		t.Error("foreign key failure classified as unique violation")
	}
}

func TestSQLiteDriver_Close(t *testing.T) {
	drv := NewSQLite()

	// Close without Open should not error
	if err := drv.Close(); err != nil {
		t.Errorf("Close without Open failed: %v", err)
	}
}

func TestSQLiteDriver_InMemorySharedAcrossCalls(t *testing.T) {
	drv := NewSQLite()
	if err := drv.Open(":memory:"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = drv.Close() }()

	ctx := context.Background()
	if _, err := drv.Exec(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	// A second pooled connection would see an empty database.
	if _, err := drv.Exec(ctx, "INSERT INTO t DEFAULT VALUES"); err != nil {
		t.Fatalf("insert into table created by earlier call: %v", err)
	}
}

func TestSQLiteApplySchema(t *testing.T) {
	drv := NewSQLite()
	if err := drv.Open(filepath.Join(t.TempDir(), "schema_test.db")); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = drv.Close() }()

	schemaFS := fstest.MapFS{
		"sqlite/test.sql": &fstest.MapFile{Data: []byte(`
-- test schema
CREATE TABLE IF NOT EXISTS test_table (
	id INTEGER PRIMARY KEY,
	name TEXT
);
CREATE INDEX IF NOT EXISTS idx_test_name ON test_table(name);
`)},
	}

	ctx := context.Background()
	if err := drv.ApplySchema(ctx, schemaFS, "test"); err != nil {
		t.Fatalf("ApplySchema failed: %v", err)
	}

	var name string
	err := drv.QueryRow(ctx, "SELECT name FROM sqlite_master WHERE type='index' AND name='idx_test_name'").Scan(&name)
	if err != nil {
		t.Errorf("idx_test_name not created: %v", err)
	}

	// Run again - should be idempotent
	if err := drv.ApplySchema(ctx, schemaFS, "test"); err != nil {
		t.Errorf("second ApplySchema failed: %v", err)
	}

	if err := drv.ApplySchema(ctx, schemaFS, "missing"); err == nil {
		t.Error("expected error for missing schema file")
	}
}

func TestSQLiteApplySchema_RollsBackOnFailure(t *testing.T) {
	drv := NewSQLite()
	if err := drv.Open(":memory:"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = drv.Close() }()

	schemaFS := fstest.MapFS{
		"sqlite/broken.sql": &fstest.MapFile{Data: []byte(`
CREATE TABLE IF NOT EXISTS first_table (id INTEGER PRIMARY KEY);
CREATE TABLE this is not sql;
`)},
	}

	ctx := context.Background()
	if err := drv.ApplySchema(ctx, schemaFS, "broken"); err == nil {
		t.Fatal("expected error for broken schema")
	}

	var n int
	if err := drv.QueryRow(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name='first_table'").Scan(&n); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if n != 0 {
		t.Error("first_table should have been rolled back")
	}
}

func TestPostgresDriver_Placeholder(t *testing.T) {
	drv := NewPostgres()

	tests := []struct {
		index int
		want  string
	}{
		{1, "$1"},
		{2, "$2"},
		{10, "$10"},
	}

	for _, tt := range tests {
		got := drv.Placeholder(tt.index)
		if got != tt.want {
			t.Errorf("Placeholder(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestPostgresDriver_Dialect(t *testing.T) {
	drv := NewPostgres()

	if drv.Dialect() != DialectPostgres {
		t.Errorf("Dialect() = %v, want %v", drv.Dialect(), DialectPostgres)
	}
}

func TestPostgresDriver_IsUniqueViolation(t *testing.T) {
	drv := NewPostgres()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlstate text", errors.New(`ERROR: duplicate key value violates unique constraint "projects_code_key" (SQLSTATE 23505)`), true},
		{"other sqlstate", errors.New(`ERROR: relation "nope" does not exist (SQLSTATE 42P01)`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := drv.IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostgresDriver_IsForeignKeyViolation(t *testing.T) {
	drv := NewPostgres()

	fk := errors.New(`ERROR: insert or update on table "assets" violates foreign key constraint "assets_project_id_fkey" (SQLSTATE 23503)`)
	if !drv.IsForeignKeyViolation(fk) {
		t.Error("IsForeignKeyViolation = false, want true")
	}
	if drv.IsUniqueViolation(fk) {
		t.Error("foreign key failure classified as unique violation")
	}
	if drv.IsForeignKeyViolation(nil) {
		t.Error("nil error should not be a foreign key violation")
	}
}

func TestPostgresDriver_Close(t *testing.T) {
	drv := NewPostgres()

	// Close without Open should not error
	if err := drv.Close(); err != nil {
		t.Errorf("Close without Open failed: %v", err)
	}
}
