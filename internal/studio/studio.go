package studio

import (
	"context"
	"fmt"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
)

// Studio is the entity store. It is safe for concurrent use when its
// Backend is.
type Studio struct {
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *Studio {
	return &Studio{backend: backend}
}

// Open opens the database named by dsn (SQLite path or postgres:// URL),
// ensures the schema and returns a Studio over it.
func Open(ctx context.Context, dsn string) (*Studio, error) {
	sdb, err := db.OpenStudio(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return New(sdb), nil
}

// Close releases the backend.
func (s *Studio) Close() error {
	return s.backend.Close()
}

// Backend exposes the storage port.
func (s *Studio) Backend() Backend {
	return s.backend
}

// --- Projects ---

// CreateProject inserts a project. Status defaults to active.
func (s *Studio) CreateProject(ctx context.Context, in NewProject) (*db.Project, error) {
	p, err := in.record()
	if err != nil {
		return nil, err
	}
	if err := s.backend.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// GetProject looks a project up by code. It returns (nil, nil) when absent.
func (s *Studio) GetProject(ctx context.Context, code string) (*db.Project, error) {
	return s.backend.GetProjectByCode(ctx, code)
}

// GetProjectByID looks a project up by id. It returns (nil, nil) when absent.
func (s *Studio) GetProjectByID(ctx context.Context, id int64) (*db.Project, error) {
	return s.backend.GetProject(ctx, id)
}

// FindProjects returns the projects matching f.
func (s *Studio) FindProjects(ctx context.Context, f db.ProjectFilter) ([]*db.Project, error) {
	return s.backend.ListProjects(ctx, f)
}

// --- Assets ---

// CreateAsset inserts an asset into the referenced project.
func (s *Studio) CreateAsset(ctx context.Context, project ProjectRef, in NewAsset) (*db.Asset, error) {
	projectID, err := s.resolveProject(ctx, project)
	if err != nil {
		return nil, err
	}
	a, err := in.record(projectID)
	if err != nil {
		return nil, err
	}
	if err := s.backend.CreateAsset(ctx, a); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return a, nil
}

// GetAsset looks an asset up by project and name. It returns (nil, nil)
// when the project exists but the asset does not.
func (s *Studio) GetAsset(ctx context.Context, project ProjectRef, name string) (*db.Asset, error) {
	projectID, err := s.resolveProject(ctx, project)
	if err != nil {
		return nil, err
	}
	return s.backend.GetAssetByName(ctx, projectID, name)
}

// GetAssetByID looks an asset up by id.
func (s *Studio) GetAssetByID(ctx context.Context, id int64) (*db.Asset, error) {
	return s.backend.GetAsset(ctx, id)
}

// FindAssets returns the assets matching f.
func (s *Studio) FindAssets(ctx context.Context, f db.AssetFilter) ([]*db.Asset, error) {
	return s.backend.ListAssets(ctx, f)
}

// --- Shots ---

// CreateShot inserts a shot into the referenced project.
func (s *Studio) CreateShot(ctx context.Context, project ProjectRef, in NewShot) (*db.Shot, error) {
	projectID, err := s.resolveProject(ctx, project)
	if err != nil {
		return nil, err
	}
	sh, err := in.record(projectID)
	if err != nil {
		return nil, err
	}
	if err := s.backend.CreateShot(ctx, sh); err != nil {
		return nil, fmt.Errorf("create shot: %w", err)
	}
	return sh, nil
}

// GetShot looks a shot up by project and name.
func (s *Studio) GetShot(ctx context.Context, project ProjectRef, name string) (*db.Shot, error) {
	projectID, err := s.resolveProject(ctx, project)
	if err != nil {
		return nil, err
	}
	return s.backend.GetShotByName(ctx, projectID, name)
}

// GetShotByID looks a shot up by id.
func (s *Studio) GetShotByID(ctx context.Context, id int64) (*db.Shot, error) {
	return s.backend.GetShot(ctx, id)
}

// FindShots returns the shots matching f.
func (s *Studio) FindShots(ctx context.Context, f db.ShotFilter) ([]*db.Shot, error) {
	return s.backend.ListShots(ctx, f)
}

// --- Tasks ---

// CreateTask inserts a task owned by the referenced asset or shot. The owner
// must exist.
func (s *Studio) CreateTask(ctx context.Context, owner db.EntityRef, in NewTask) (*db.Task, error) {
	t, err := in.record(owner)
	if err != nil {
		return nil, err
	}
	if err := s.resolveOwner(ctx, owner); err != nil {
		return nil, err
	}
	if err := s.backend.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// GetTask looks a task up by owner and name.
func (s *Studio) GetTask(ctx context.Context, owner db.EntityRef, name string) (*db.Task, error) {
	if !owner.Kind.Valid() {
		return nil, grid.ErrValidation("entity_kind", fmt.Sprintf("%q is not one of asset, shot", owner.Kind))
	}
	return s.backend.GetTaskByName(ctx, owner, name)
}

// GetTaskByID looks a task up by id.
func (s *Studio) GetTaskByID(ctx context.Context, id int64) (*db.Task, error) {
	return s.backend.GetTask(ctx, id)
}

// FindTasks returns the tasks matching f.
func (s *Studio) FindTasks(ctx context.Context, f db.TaskFilter) ([]*db.Task, error) {
	if f.Entity != nil && !f.Entity.Kind.Valid() {
		return nil, grid.ErrValidation("entity_kind", fmt.Sprintf("%q is not one of asset, shot", f.Entity.Kind))
	}
	return s.backend.ListTasks(ctx, f)
}

// UpdateTask writes the non-nil fields of patch. An empty patch is a no-op.
func (s *Studio) UpdateTask(ctx context.Context, id int64, patch db.TaskPatch) error {
	if patch.Empty() {
		return nil
	}
	if err := validPatch(patch); err != nil {
		return err
	}
	if err := s.backend.UpdateTask(ctx, id, patch); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// --- Versions ---

// CreateVersion publishes the next version of a task.
func (s *Studio) CreateVersion(ctx context.Context, taskID int64, in NewVersion) (*db.Version, error) {
	v, err := in.record(taskID)
	if err != nil {
		return nil, err
	}
	if err := s.backend.CreateVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}
	return v, nil
}

// GetVersionByID looks a version up by id.
func (s *Studio) GetVersionByID(ctx context.Context, id int64) (*db.Version, error) {
	return s.backend.GetVersion(ctx, id)
}

// FindVersions returns the versions matching f in version order.
func (s *Studio) FindVersions(ctx context.Context, f db.VersionFilter) ([]*db.Version, error) {
	return s.backend.ListVersions(ctx, f)
}

// Stats returns row counts per entity kind.
func (s *Studio) Stats(ctx context.Context) (*db.Stats, error) {
	return s.backend.Stats(ctx)
}
