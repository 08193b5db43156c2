// Package studio is the entity store facade for opengrid.
//
// Studio validates input, applies defaults, resolves project and owner
// references, and delegates persistence to a Backend. The SQLite and
// PostgreSQL backends are the same db.StudioDB running on different drivers,
// so every business rule here applies to both.
package studio

import (
	"context"

	"github.com/randalmurphal/opengrid/internal/db"
)

// Backend is the storage port the studio is written against.
//
// Get methods return (nil, nil) when the row does not exist. Create methods
// fill in ID and CreatedAt on the passed record.
type Backend interface {
	CreateProject(ctx context.Context, p *db.Project) error
	GetProject(ctx context.Context, id int64) (*db.Project, error)
	GetProjectByCode(ctx context.Context, code string) (*db.Project, error)
	ListProjects(ctx context.Context, f db.ProjectFilter) ([]*db.Project, error)

	CreateAsset(ctx context.Context, a *db.Asset) error
	GetAsset(ctx context.Context, id int64) (*db.Asset, error)
	GetAssetByName(ctx context.Context, projectID int64, name string) (*db.Asset, error)
	ListAssets(ctx context.Context, f db.AssetFilter) ([]*db.Asset, error)

	CreateShot(ctx context.Context, sh *db.Shot) error
	GetShot(ctx context.Context, id int64) (*db.Shot, error)
	GetShotByName(ctx context.Context, projectID int64, name string) (*db.Shot, error)
	ListShots(ctx context.Context, f db.ShotFilter) ([]*db.Shot, error)

	CreateTask(ctx context.Context, t *db.Task) error
	GetTask(ctx context.Context, id int64) (*db.Task, error)
	GetTaskByName(ctx context.Context, owner db.EntityRef, name string) (*db.Task, error)
	ListTasks(ctx context.Context, f db.TaskFilter) ([]*db.Task, error)
	UpdateTask(ctx context.Context, id int64, patch db.TaskPatch) error
	EntityExists(ctx context.Context, ref db.EntityRef) (bool, error)

	CreateVersion(ctx context.Context, v *db.Version) error
	GetVersion(ctx context.Context, id int64) (*db.Version, error)
	ListVersions(ctx context.Context, f db.VersionFilter) ([]*db.Version, error)

	Stats(ctx context.Context) (*db.Stats, error)
	Close() error
}

var _ Backend = (*db.StudioDB)(nil)
