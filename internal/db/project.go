package db

import (
	"context"
	"database/sql"
	"errors"

	grid "github.com/randalmurphal/opengrid/internal/errors"
)

const projectColumns = `id, name, code, status, description, created_at, metadata`

// CreateProject inserts p and fills in its ID and CreatedAt.
func (s *StudioDB) CreateProject(ctx context.Context, p *Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	if len(p.Metadata) == 0 {
		p.Metadata = EmptyMetadata()
	}

	err := s.RunInTx(ctx, func(tx *TxOps) error {
		return tx.QueryRow(`
			INSERT INTO projects (name, code, status, description, created_at, metadata)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`, p.Name, p.Code, p.Status, nullString(p.Description), timeArg(tx.Dialect(), p.CreatedAt), p.Metadata).Scan(&p.ID)
	})
	return s.classify("create project", "project", p.Code, nil, err)
}

// GetProject returns the project with the given id, or nil if none exists.
func (s *StudioDB) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := s.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get project", err)
	}
	return p, nil
}

// GetProjectByCode returns the project with the given code, or nil if none exists.
func (s *StudioDB) GetProjectByCode(ctx context.Context, code string) (*Project, error) {
	row := s.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE code = ?`, code)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get project", err)
	}
	return p, nil
}

// ListProjects returns the projects matching f ordered by id.
func (s *StudioDB) ListProjects(ctx context.Context, f ProjectFilter) ([]*Project, error) {
	where := f.filter()
	rows, err := s.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects`+where.Where()+` ORDER BY id`, where.Args()...)
	if err != nil {
		return nil, grid.ErrStorage("list projects", err)
	}
	defer func() { _ = rows.Close() }()

	projects := make([]*Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, grid.ErrStorage("scan project", err)
		}
		if p.Metadata.Matches(f.Metadata) {
			projects = append(projects, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, grid.ErrStorage("list projects", err)
	}
	return projects, nil
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	var status, description sql.NullString
	var createdAt nullTime

	if err := row.Scan(&p.ID, &p.Name, &p.Code, &status, &description, &createdAt, &p.Metadata); err != nil {
		return nil, err
	}

	p.Status = status.String
	p.Description = description.String
	p.CreatedAt = createdAt.Time
	return &p, nil
}
