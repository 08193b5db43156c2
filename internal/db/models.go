package db

import (
	"fmt"
	"time"
)

// Project status values.
const (
	ProjectActive   = "active"
	ProjectArchived = "archived"
)

// Work status values shared by assets, shots and tasks.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusApproved   = "approved"
	StatusComplete   = "complete"
	StatusOnHold     = "on_hold"
)

// VersionPendingReview is the initial status of a published version.
const VersionPendingReview = "pending_review"

// Asset types.
const (
	AssetCharacter   = "character"
	AssetProp        = "prop"
	AssetEnvironment = "environment"
	AssetVehicle     = "vehicle"
	AssetFX          = "fx"
	AssetOther       = "other"
)

// Default values applied when a field is left empty.
const (
	DefaultFrameStart   = 1001
	DefaultFrameEnd     = 1100
	DefaultTaskPriority = 50
)

// EntityKind tags which table a task's owner lives in.
type EntityKind string

const (
	KindAsset EntityKind = "asset"
	KindShot  EntityKind = "shot"
)

// Valid reports whether k is one of the known owner kinds.
func (k EntityKind) Valid() bool {
	return k == KindAsset || k == KindShot
}

// EntityRef identifies a task owner by kind and id.
type EntityRef struct {
	Kind EntityKind `json:"entity_kind" yaml:"entity_kind"`
	ID   int64      `json:"entity_id" yaml:"entity_id"`
}

// AssetRef returns the owner reference for an asset id.
func AssetRef(id int64) EntityRef { return EntityRef{Kind: KindAsset, ID: id} }

// ShotRef returns the owner reference for a shot id.
func ShotRef(id int64) EntityRef { return EntityRef{Kind: KindShot, ID: id} }

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Owner is an entity that can own tasks. Only *Asset and *Shot implement it.
type Owner interface {
	Ref() EntityRef
	taskOwner()
}

// Project is the top-level container.
type Project struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Code        string    `json:"code" yaml:"code"`
	Status      string    `json:"status" yaml:"status"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Metadata    Metadata  `json:"metadata" yaml:"metadata"`
}

// Asset is a reusable production element within a project.
type Asset struct {
	ID          int64     `json:"id" yaml:"id"`
	ProjectID   int64     `json:"project_id" yaml:"project_id"`
	Name        string    `json:"name" yaml:"name"`
	AssetType   string    `json:"asset_type" yaml:"asset_type"`
	Status      string    `json:"status" yaml:"status"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Metadata    Metadata  `json:"metadata" yaml:"metadata"`
}

// Ref returns the task-owner reference of the asset.
func (a *Asset) Ref() EntityRef { return AssetRef(a.ID) }

func (a *Asset) taskOwner() {}

// Shot is a frame range within a sequence of a project.
type Shot struct {
	ID          int64     `json:"id" yaml:"id"`
	ProjectID   int64     `json:"project_id" yaml:"project_id"`
	Sequence    string    `json:"sequence" yaml:"sequence"`
	Name        string    `json:"name" yaml:"name"`
	FrameStart  int       `json:"frame_start" yaml:"frame_start"`
	FrameEnd    int       `json:"frame_end" yaml:"frame_end"`
	Status      string    `json:"status" yaml:"status"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Metadata    Metadata  `json:"metadata" yaml:"metadata"`
}

// Ref returns the task-owner reference of the shot.
func (s *Shot) Ref() EntityRef { return ShotRef(s.ID) }

func (s *Shot) taskOwner() {}

// Duration is the inclusive frame count of the shot.
func (s *Shot) Duration() int {
	return s.FrameEnd - s.FrameStart + 1
}

// Task is a unit of work on an asset or a shot.
type Task struct {
	ID         int64      `json:"id" yaml:"id"`
	EntityKind EntityKind `json:"entity_kind" yaml:"entity_kind"`
	EntityID   int64      `json:"entity_id" yaml:"entity_id"`
	Name       string     `json:"name" yaml:"name"`
	Status     string     `json:"status" yaml:"status"`
	Assignee   string     `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Priority   int        `json:"priority" yaml:"priority"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	Metadata   Metadata   `json:"metadata" yaml:"metadata"`
}

// Owner returns the reference to the asset or shot owning the task.
func (t *Task) Owner() EntityRef {
	return EntityRef{Kind: t.EntityKind, ID: t.EntityID}
}

// TaskPatch lists the task fields an update may change. Nil fields are left
// untouched.
type TaskPatch struct {
	Status   *string    `json:"status,omitempty"`
	Assignee *string    `json:"assignee,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority *int       `json:"priority,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Status == nil && p.Assignee == nil && p.DueDate == nil && p.Priority == nil
}

// Version is a numbered iteration of work published against a task.
type Version struct {
	ID            int64     `json:"id" yaml:"id"`
	TaskID        int64     `json:"task_id" yaml:"task_id"`
	VersionNumber int       `json:"version_number" yaml:"version_number"`
	Status        string    `json:"status" yaml:"status"`
	Path          string    `json:"path,omitempty" yaml:"path,omitempty"`
	Thumbnail     string    `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Notes         string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	Metadata      Metadata  `json:"metadata" yaml:"metadata"`
}

// VersionString formats the version number as v001, v002, ...
func (v *Version) VersionString() string {
	return fmt.Sprintf("v%03d", v.VersionNumber)
}

// Stats holds row counts per table.
type Stats struct {
	Projects int `json:"projects" yaml:"projects"`
	Assets   int `json:"assets" yaml:"assets"`
	Shots    int `json:"shots" yaml:"shots"`
	Tasks    int `json:"tasks" yaml:"tasks"`
	Versions int `json:"versions" yaml:"versions"`
}
