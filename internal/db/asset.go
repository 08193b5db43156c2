package db

import (
	"context"
	"database/sql"
	"errors"

	grid "github.com/randalmurphal/opengrid/internal/errors"
)

const assetColumns = `id, project_id, name, asset_type, status, description, thumbnail, created_at, metadata`

// CreateAsset inserts a and fills in its ID and CreatedAt. A project_id that
// does not exist is reported as a missing project.
func (s *StudioDB) CreateAsset(ctx context.Context, a *Asset) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	if len(a.Metadata) == 0 {
		a.Metadata = EmptyMetadata()
	}

	err := s.RunInTx(ctx, func(tx *TxOps) error {
		return tx.QueryRow(`
			INSERT INTO assets (project_id, name, asset_type, status, description, thumbnail, created_at, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`, a.ProjectID, a.Name, a.AssetType, a.Status, nullString(a.Description), nullString(a.Thumbnail),
			timeArg(tx.Dialect(), a.CreatedAt), a.Metadata).Scan(&a.ID)
	})
	return s.classify("create asset", "asset", a.Name, &parentRef{kind: "project", id: a.ProjectID}, err)
}

// GetAsset returns the asset with the given id, or nil if none exists.
func (s *StudioDB) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	row := s.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get asset", err)
	}
	return a, nil
}

// GetAssetByName returns the named asset of a project, or nil if none exists.
func (s *StudioDB) GetAssetByName(ctx context.Context, projectID int64, name string) (*Asset, error) {
	row := s.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE project_id = ? AND name = ?`, projectID, name)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get asset", err)
	}
	return a, nil
}

// ListAssets returns the assets matching f ordered by id.
func (s *StudioDB) ListAssets(ctx context.Context, f AssetFilter) ([]*Asset, error) {
	where := f.filter()
	rows, err := s.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets`+where.Where()+` ORDER BY id`, where.Args()...)
	if err != nil {
		return nil, grid.ErrStorage("list assets", err)
	}
	defer func() { _ = rows.Close() }()

	assets := make([]*Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, grid.ErrStorage("scan asset", err)
		}
		if a.Metadata.Matches(f.Metadata) {
			assets = append(assets, a)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, grid.ErrStorage("list assets", err)
	}
	return assets, nil
}

func scanAsset(row scanner) (*Asset, error) {
	var a Asset
	var status, description, thumbnail sql.NullString
	var createdAt nullTime

	if err := row.Scan(&a.ID, &a.ProjectID, &a.Name, &a.AssetType, &status, &description, &thumbnail,
		&createdAt, &a.Metadata); err != nil {
		return nil, err
	}

	a.Status = status.String
	a.Description = description.String
	a.Thumbnail = thumbnail.String
	a.CreatedAt = createdAt.Time
	return &a, nil
}
