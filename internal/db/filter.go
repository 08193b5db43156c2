package db

import (
	"reflect"
	"strings"
)

// Filter accumulates equality predicates for a WHERE clause. Zero values are
// skipped, so an unset filter field places no restriction on the result.
// Columns are always literals chosen by this package; values are always bound
// parameters.
type Filter struct {
	clauses []string
	args    []any
}

// Eq adds "column = ?" unless value is nil or the zero value of its type.
func (f *Filter) Eq(column string, value any) *Filter {
	if value == nil {
		return f
	}
	if rv := reflect.ValueOf(value); rv.IsZero() {
		return f
	}
	return f.Require(column, value)
}

// Require adds "column = ?" regardless of value.
func (f *Filter) Require(column string, value any) *Filter {
	f.clauses = append(f.clauses, column+" = ?")
	f.args = append(f.args, value)
	return f
}

// Where renders the accumulated predicates, or "" when there are none.
func (f *Filter) Where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// Args returns the bound values in clause order.
func (f *Filter) Args() []any {
	return f.args
}

// ProjectFilter selects projects.
type ProjectFilter struct {
	Status   string
	Metadata map[string]string
}

func (p ProjectFilter) filter() *Filter {
	return new(Filter).Eq("status", p.Status)
}

// AssetFilter selects assets.
type AssetFilter struct {
	ProjectID int64
	AssetType string
	Status    string
	Metadata  map[string]string
}

func (a AssetFilter) filter() *Filter {
	return new(Filter).
		Eq("project_id", a.ProjectID).
		Eq("asset_type", a.AssetType).
		Eq("status", a.Status)
}

// ShotFilter selects shots.
type ShotFilter struct {
	ProjectID int64
	Sequence  string
	Status    string
	Metadata  map[string]string
}

func (s ShotFilter) filter() *Filter {
	return new(Filter).
		Eq("project_id", s.ProjectID).
		Eq("sequence", s.Sequence).
		Eq("status", s.Status)
}

// TaskFilter selects tasks. Entity restricts to a single owner.
type TaskFilter struct {
	Entity   *EntityRef
	Status   string
	Assignee string
	Metadata map[string]string
}

func (t TaskFilter) filter() *Filter {
	f := new(Filter)
	if t.Entity != nil {
		f.Require("entity_kind", string(t.Entity.Kind)).Require("entity_id", t.Entity.ID)
	}
	return f.Eq("status", t.Status).Eq("assignee", t.Assignee)
}

// VersionFilter selects versions.
type VersionFilter struct {
	TaskID    int64
	Status    string
	CreatedBy string
	Metadata  map[string]string
}

func (v VersionFilter) filter() *Filter {
	return new(Filter).
		Eq("task_id", v.TaskID).
		Eq("status", v.Status).
		Eq("created_by", v.CreatedBy)
}
