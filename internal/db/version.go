package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/randalmurphal/opengrid/internal/db/driver"
	grid "github.com/randalmurphal/opengrid/internal/errors"
)

// MaxVersionAttempts bounds how often CreateVersion re-reads the next number
// after losing a race on UNIQUE (task_id, version_number).
const MaxVersionAttempts = 5

const versionColumns = `id, task_id, version_number, status, path, thumbnail, notes, created_by, created_at, metadata`

// CreateVersion allocates the next version number for v.TaskID and inserts v.
// ID, VersionNumber and CreatedAt are filled in.
//
// Number allocation and insert share one transaction. On PostgreSQL the task
// row is locked first so concurrent publishers on the same task queue up
// instead of colliding; SQLite serializes writers on its single connection.
// A unique violation on the version number still triggers a bounded retry
// with a fresh read.
func (s *StudioDB) CreateVersion(ctx context.Context, v *Version) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now()
	}
	if len(v.Metadata) == 0 {
		v.Metadata = EmptyMetadata()
	}

	var err error
	for attempt := 1; attempt <= MaxVersionAttempts; attempt++ {
		err = s.RunInTx(ctx, func(tx *TxOps) error {
			return insertVersionTx(tx, v)
		})
		if err == nil || !s.driver.IsUniqueViolation(err) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return s.classify("create version", "version", versionKey(v), &parentRef{kind: "task", id: v.TaskID}, err)
}

// insertVersionTx reads MAX(version_number) for the task and inserts v as
// the next number.
func insertVersionTx(tx *TxOps, v *Version) error {
	lock := `SELECT id FROM tasks WHERE id = ?`
	if tx.Dialect() == driver.DialectPostgres {
		lock += ` FOR UPDATE`
	}
	var taskID int64
	if err := tx.QueryRow(lock, v.TaskID).Scan(&taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grid.ErrNotFound("task", strconv.FormatInt(v.TaskID, 10))
		}
		return fmt.Errorf("lock task: %w", err)
	}

	var next int
	if err := tx.QueryRow(`
		SELECT COALESCE(MAX(version_number), 0) + 1 FROM versions WHERE task_id = ?
	`, v.TaskID).Scan(&next); err != nil {
		return fmt.Errorf("next version number: %w", err)
	}

	if err := tx.QueryRow(`
		INSERT INTO versions (task_id, version_number, status, path, thumbnail, notes, created_by, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, v.TaskID, next, v.Status, nullString(v.Path), nullString(v.Thumbnail), nullString(v.Notes),
		nullString(v.CreatedBy), timeArg(tx.Dialect(), v.CreatedAt), v.Metadata).Scan(&v.ID); err != nil {
		return err
	}
	v.VersionNumber = next
	return nil
}

func versionKey(v *Version) string {
	return fmt.Sprintf("task %d %s", v.TaskID, v.VersionString())
}

// GetVersion returns the version with the given id, or nil if none exists.
func (s *StudioDB) GetVersion(ctx context.Context, id int64) (*Version, error) {
	row := s.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM versions WHERE id = ?`, id)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get version", err)
	}
	return v, nil
}

// ListVersions returns the versions matching f in ascending version_number order.
func (s *StudioDB) ListVersions(ctx context.Context, f VersionFilter) ([]*Version, error) {
	where := f.filter()
	rows, err := s.QueryContext(ctx, `SELECT `+versionColumns+` FROM versions`+where.Where()+` ORDER BY version_number, id`, where.Args()...)
	if err != nil {
		return nil, grid.ErrStorage("list versions", err)
	}
	defer func() { _ = rows.Close() }()

	versions := make([]*Version, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, grid.ErrStorage("scan version", err)
		}
		if v.Metadata.Matches(f.Metadata) {
			versions = append(versions, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, grid.ErrStorage("list versions", err)
	}
	return versions, nil
}

func scanVersion(row scanner) (*Version, error) {
	var v Version
	var status, path, thumbnail, notes, createdBy sql.NullString
	var createdAt nullTime

	if err := row.Scan(&v.ID, &v.TaskID, &v.VersionNumber, &status, &path, &thumbnail, &notes, &createdBy,
		&createdAt, &v.Metadata); err != nil {
		return nil, err
	}

	v.Status = status.String
	v.Path = path.String
	v.Thumbnail = thumbnail.String
	v.Notes = notes.String
	v.CreatedBy = createdBy.String
	v.CreatedAt = createdAt.Time
	return &v, nil
}
