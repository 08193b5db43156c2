package studio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
)

// countingBackend records project-code lookups and writes.
type countingBackend struct {
	Backend
	codeLookups int
	writes      int
}

func (c *countingBackend) GetProjectByCode(ctx context.Context, code string) (*db.Project, error) {
	c.codeLookups++
	return c.Backend.GetProjectByCode(ctx, code)
}

func (c *countingBackend) CreateAsset(ctx context.Context, a *db.Asset) error {
	c.writes++
	return c.Backend.CreateAsset(ctx, a)
}

func (c *countingBackend) CreateShot(ctx context.Context, sh *db.Shot) error {
	c.writes++
	return c.Backend.CreateShot(ctx, sh)
}

func newTestStudio(t *testing.T) (*Studio, *countingBackend) {
	t.Helper()
	backend := &countingBackend{Backend: db.NewTestStudioDB(t)}
	return New(backend), backend
}

func intPtr(i int) *int { return &i }

func TestCreateProject(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, db.ProjectActive, p.Status)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetProject(ctx, "DEMO")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.CreateProject(ctx, NewProject{Name: "Again", Code: "DEMO"})
	assert.True(t, grid.IsUniqueViolation(err), "got %v", err)

	all, err := s.FindProjects(ctx, db.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1, "failed insert must leave the table unchanged")
}

func TestCreateProject_MetadataRoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()

	doc := `{"a": 1, "b": [1,2,3], "big": 9007199254740993}`
	p, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO", Metadata: db.Metadata(doc)})
	require.NoError(t, err)

	got, err := s.GetProject(ctx, "DEMO")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, doc, string(got.Metadata))
	assert.Equal(t, p.Metadata, got.Metadata)

	_, err = s.CreateProject(ctx, NewProject{Name: "Bad", Code: "BAD", Metadata: db.Metadata(`[1, 2]`)})
	assert.True(t, grid.IsValidation(err), "got %v", err)
	_, err = s.CreateProject(ctx, NewProject{Name: "Bad", Code: "BAD", Metadata: db.Metadata(`{"a":`)})
	assert.True(t, grid.IsValidation(err), "got %v", err)
}

func TestCreateProject_Validation(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)

	tests := []struct {
		name string
		in   NewProject
	}{
		{"empty name", NewProject{Code: "X"}},
		{"empty code", NewProject{Name: "X"}},
		{"blank code", NewProject{Name: "X", Code: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateProject(context.Background(), tt.in)
			assert.True(t, grid.IsValidation(err), "got %v", err)
		})
	}
}

func TestDefaultProjectCode(t *testing.T) {
	assert.Equal(t, "MY_SHOW", DefaultProjectCode("my show"))
	assert.Equal(t, "DEMO", DefaultProjectCode(" demo "))
}

func TestProjectRefResolution(t *testing.T) {
	t.Parallel()
	s, backend := newTestStudio(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)

	// Code refs are looked up.
	a, err := s.CreateAsset(ctx, ProjectCode("DEMO"), NewAsset{Name: "hero", AssetType: db.AssetCharacter})
	require.NoError(t, err)
	assert.Equal(t, p.ID, a.ProjectID)
	assert.Equal(t, 1, backend.codeLookups)

	// Handles and ids are trusted as-is.
	_, err = s.CreateAsset(ctx, ProjectHandle(p), NewAsset{Name: "sword", AssetType: db.AssetProp})
	require.NoError(t, err)
	_, err = s.CreateAsset(ctx, ProjectID(p.ID), NewAsset{Name: "shield", AssetType: db.AssetProp})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.codeLookups)

	// Unknown code: NotFound and no write attempted.
	writes := backend.writes
	_, err = s.CreateAsset(ctx, ProjectCode("NOPE"), NewAsset{Name: "ghost", AssetType: db.AssetProp})
	assert.True(t, grid.IsNotFound(err), "got %v", err)
	assert.Equal(t, writes, backend.writes)

	// A trusted id that does not exist is rejected by the backend.
	_, err = s.CreateShot(ctx, ProjectID(9999), NewShot{Sequence: "SQ010", Name: "SH010"})
	assert.True(t, grid.IsNotFound(err), "got %v", err)

	_, err = s.CreateAsset(ctx, ProjectRef{}, NewAsset{Name: "x", AssetType: db.AssetProp})
	assert.True(t, grid.IsValidation(err), "got %v", err)

	_, err = s.GetAsset(ctx, ProjectCode("NOPE"), "hero")
	assert.True(t, grid.IsNotFound(err), "got %v", err)

	missing, err := s.GetAsset(ctx, ProjectCode("DEMO"), "villain")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateAsset_Validation(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()
	_, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)

	_, err = s.CreateAsset(ctx, ProjectCode("DEMO"), NewAsset{Name: "hero"})
	assert.True(t, grid.IsValidation(err), "got %v", err)
	_, err = s.CreateAsset(ctx, ProjectCode("DEMO"), NewAsset{AssetType: db.AssetProp})
	assert.True(t, grid.IsValidation(err), "got %v", err)
}

func TestCreateShot(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()
	_, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)

	sh, err := s.CreateShot(ctx, ProjectCode("DEMO"), NewShot{Sequence: "SQ010", Name: "SH010"})
	require.NoError(t, err)
	assert.Equal(t, db.DefaultFrameStart, sh.FrameStart)
	assert.Equal(t, db.DefaultFrameEnd, sh.FrameEnd)
	assert.Equal(t, db.StatusWaiting, sh.Status)

	single, err := s.CreateShot(ctx, ProjectCode("DEMO"), NewShot{Sequence: "SQ010", Name: "SH020", FrameStart: intPtr(1), FrameEnd: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, single.Duration())

	_, err = s.CreateShot(ctx, ProjectCode("DEMO"), NewShot{Sequence: "SQ010", Name: "SH030", FrameStart: intPtr(20), FrameEnd: intPtr(10)})
	assert.True(t, grid.IsValidation(err), "got %v", err)

	_, err = s.CreateShot(ctx, ProjectCode("DEMO"), NewShot{Name: "SH040"})
	assert.True(t, grid.IsValidation(err), "got %v", err)

	got, err := s.GetShot(ctx, ProjectCode("DEMO"), "SH010")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sh.ID, got.ID)
}

func TestCreateTask(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()
	p, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)
	hero, err := s.CreateAsset(ctx, ProjectHandle(p), NewAsset{Name: "hero", AssetType: db.AssetCharacter})
	require.NoError(t, err)
	shot, err := s.CreateShot(ctx, ProjectHandle(p), NewShot{Sequence: "SQ010", Name: "SH010"})
	require.NoError(t, err)

	task, err := s.CreateTask(ctx, OwnerRef(hero), NewTask{Name: "modeling"})
	require.NoError(t, err)
	assert.Equal(t, db.KindAsset, task.EntityKind)
	assert.Equal(t, hero.ID, task.EntityID)
	assert.Equal(t, db.DefaultTaskPriority, task.Priority)
	assert.Equal(t, db.StatusWaiting, task.Status)

	shotTask, err := s.CreateTask(ctx, OwnerRef(shot), NewTask{Name: "modeling", Priority: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, db.KindShot, shotTask.EntityKind)
	assert.Equal(t, 0, shotTask.Priority)

	_, err = s.CreateTask(ctx, db.ShotRef(9999), NewTask{Name: "comp"})
	assert.True(t, grid.IsNotFound(err), "got %v", err)

	_, err = s.CreateTask(ctx, db.EntityRef{Kind: "sequence", ID: hero.ID}, NewTask{Name: "comp"})
	assert.True(t, grid.IsValidation(err), "got %v", err)

	for _, bad := range []int{-1, 101} {
		_, err = s.CreateTask(ctx, OwnerRef(hero), NewTask{Name: "lookdev", Priority: intPtr(bad)})
		assert.True(t, grid.IsValidation(err), "priority %d: got %v", bad, err)
	}

	_, err = s.CreateTask(ctx, OwnerRef(hero), NewTask{Name: "modeling"})
	assert.True(t, grid.IsUniqueViolation(err), "got %v", err)

	got, err := s.GetTask(ctx, OwnerRef(shot), "modeling")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, shotTask.ID, got.ID)

	_, err = s.GetTask(ctx, db.EntityRef{Kind: "episode", ID: 1}, "modeling")
	assert.True(t, grid.IsValidation(err), "got %v", err)
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()
	p, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)
	hero, err := s.CreateAsset(ctx, ProjectHandle(p), NewAsset{Name: "hero", AssetType: db.AssetCharacter})
	require.NoError(t, err)
	task, err := s.CreateTask(ctx, OwnerRef(hero), NewTask{Name: "modeling", Assignee: "alice"})
	require.NoError(t, err)

	// Empty patch: no error, even for a missing task.
	require.NoError(t, s.UpdateTask(ctx, task.ID, db.TaskPatch{}))
	require.NoError(t, s.UpdateTask(ctx, 9999, db.TaskPatch{}))

	status := db.StatusApproved
	due := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateTask(ctx, task.ID, db.TaskPatch{Status: &status, DueDate: &due}))

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusApproved, got.Status)
	assert.Equal(t, "alice", got.Assignee)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	err = s.UpdateTask(ctx, task.ID, db.TaskPatch{Priority: intPtr(150)})
	assert.True(t, grid.IsValidation(err), "got %v", err)

	empty := ""
	err = s.UpdateTask(ctx, task.ID, db.TaskPatch{Status: &empty})
	assert.True(t, grid.IsValidation(err), "got %v", err)

	err = s.UpdateTask(ctx, 9999, db.TaskPatch{Status: &status})
	assert.True(t, grid.IsNotFound(err), "got %v", err)
}

func TestVersions(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()
	p, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)
	shot, err := s.CreateShot(ctx, ProjectHandle(p), NewShot{Sequence: "SQ010", Name: "SH010"})
	require.NoError(t, err)
	comp, err := s.CreateTask(ctx, OwnerRef(shot), NewTask{Name: "comp"})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		v, err := s.CreateVersion(ctx, comp.ID, NewVersion{CreatedBy: "bob", Metadata: db.Metadata(fmt.Sprintf(`{"take": %d}`, i))})
		require.NoError(t, err)
		assert.Equal(t, i, v.VersionNumber)
		assert.Equal(t, db.VersionPendingReview, v.Status)
	}

	versions, err := s.FindVersions(ctx, db.VersionFilter{TaskID: comp.ID})
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "v003", versions[2].VersionString())

	second, err := s.FindVersions(ctx, db.VersionFilter{TaskID: comp.ID, Metadata: map[string]string{"take": "2"}})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0].VersionNumber)

	byID, err := s.GetVersionByID(ctx, second[0].ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, comp.ID, byID.TaskID)

	_, err = s.CreateVersion(ctx, 9999, NewVersion{})
	assert.True(t, grid.IsNotFound(err), "got %v", err)
}

func TestFindTasks(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()
	p, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)
	hero, err := s.CreateAsset(ctx, ProjectHandle(p), NewAsset{Name: "hero", AssetType: db.AssetCharacter})
	require.NoError(t, err)

	_, err = s.CreateTask(ctx, OwnerRef(hero), NewTask{Name: "modeling", Assignee: "alice"})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, OwnerRef(hero), NewTask{Name: "rigging", Assignee: "bob"})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, OwnerRef(hero), NewTask{Name: "lookdev", Assignee: "alice", Status: db.StatusInProgress})
	require.NoError(t, err)

	ref := OwnerRef(hero)
	tests := []struct {
		name   string
		filter db.TaskFilter
		want   []string
	}{
		{"all", db.TaskFilter{}, []string{"modeling", "rigging", "lookdev"}},
		{"owner", db.TaskFilter{Entity: &ref}, []string{"modeling", "rigging", "lookdev"}},
		{"assignee", db.TaskFilter{Assignee: "alice"}, []string{"modeling", "lookdev"}},
		{"assignee and status", db.TaskFilter{Assignee: "alice", Status: db.StatusInProgress}, []string{"lookdev"}},
		{"no match", db.TaskFilter{Assignee: "carol"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := s.FindTasks(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(tasks))
			for _, task := range tasks {
				names = append(names, task.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	bad := db.EntityRef{Kind: "episode", ID: 1}
	_, err = s.FindTasks(ctx, db.TaskFilter{Entity: &bad})
	assert.True(t, grid.IsValidation(err), "got %v", err)
}

func TestStats(t *testing.T) {
	t.Parallel()
	s, _ := newTestStudio(t)
	ctx := context.Background()
	_, err := s.CreateProject(ctx, NewProject{Name: "Demo", Code: "DEMO"})
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Projects)
	assert.Zero(t, st.Versions)
}

func TestParseEntityKind(t *testing.T) {
	kind, err := ParseEntityKind("Shot")
	require.NoError(t, err)
	assert.Equal(t, db.KindShot, kind)

	_, err = ParseEntityKind("episode")
	assert.True(t, grid.IsValidation(err))
}
