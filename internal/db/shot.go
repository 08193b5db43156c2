package db

import (
	"context"
	"database/sql"
	"errors"

	grid "github.com/randalmurphal/opengrid/internal/errors"
)

const shotColumns = `id, project_id, sequence, name, frame_start, frame_end, status, description, thumbnail, created_at, metadata`

// CreateShot inserts sh and fills in its ID and CreatedAt.
func (s *StudioDB) CreateShot(ctx context.Context, sh *Shot) error {
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = now()
	}
	if len(sh.Metadata) == 0 {
		sh.Metadata = EmptyMetadata()
	}

	err := s.RunInTx(ctx, func(tx *TxOps) error {
		return tx.QueryRow(`
			INSERT INTO shots (project_id, sequence, name, frame_start, frame_end, status, description, thumbnail, created_at, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`, sh.ProjectID, sh.Sequence, sh.Name, sh.FrameStart, sh.FrameEnd, sh.Status,
			nullString(sh.Description), nullString(sh.Thumbnail), timeArg(tx.Dialect(), sh.CreatedAt), sh.Metadata).Scan(&sh.ID)
	})
	return s.classify("create shot", "shot", sh.Name, &parentRef{kind: "project", id: sh.ProjectID}, err)
}

// GetShot returns the shot with the given id, or nil if none exists.
func (s *StudioDB) GetShot(ctx context.Context, id int64) (*Shot, error) {
	row := s.QueryRowContext(ctx, `SELECT `+shotColumns+` FROM shots WHERE id = ?`, id)
	sh, err := scanShot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get shot", err)
	}
	return sh, nil
}

// GetShotByName returns the named shot of a project, or nil if none exists.
func (s *StudioDB) GetShotByName(ctx context.Context, projectID int64, name string) (*Shot, error) {
	row := s.QueryRowContext(ctx, `SELECT `+shotColumns+` FROM shots WHERE project_id = ? AND name = ?`, projectID, name)
	sh, err := scanShot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get shot", err)
	}
	return sh, nil
}

// ListShots returns the shots matching f ordered by id.
func (s *StudioDB) ListShots(ctx context.Context, f ShotFilter) ([]*Shot, error) {
	where := f.filter()
	rows, err := s.QueryContext(ctx, `SELECT `+shotColumns+` FROM shots`+where.Where()+` ORDER BY id`, where.Args()...)
	if err != nil {
		return nil, grid.ErrStorage("list shots", err)
	}
	defer func() { _ = rows.Close() }()

	shots := make([]*Shot, 0)
	for rows.Next() {
		sh, err := scanShot(rows)
		if err != nil {
			return nil, grid.ErrStorage("scan shot", err)
		}
		if sh.Metadata.Matches(f.Metadata) {
			shots = append(shots, sh)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, grid.ErrStorage("list shots", err)
	}
	return shots, nil
}

func scanShot(row scanner) (*Shot, error) {
	var sh Shot
	var status, description, thumbnail sql.NullString
	var frameStart, frameEnd sql.NullInt64
	var createdAt nullTime

	if err := row.Scan(&sh.ID, &sh.ProjectID, &sh.Sequence, &sh.Name, &frameStart, &frameEnd, &status,
		&description, &thumbnail, &createdAt, &sh.Metadata); err != nil {
		return nil, err
	}

	sh.FrameStart = DefaultFrameStart
	if frameStart.Valid {
		sh.FrameStart = int(frameStart.Int64)
	}
	sh.FrameEnd = DefaultFrameEnd
	if frameEnd.Valid {
		sh.FrameEnd = int(frameEnd.Int64)
	}
	sh.Status = status.String
	sh.Description = description.String
	sh.Thumbnail = thumbnail.String
	sh.CreatedAt = createdAt.Time
	return &sh, nil
}
