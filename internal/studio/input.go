package studio

import (
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
)

// NewProject holds the caller-supplied fields of a project.
type NewProject struct {
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Status      string      `json:"status,omitempty"`
	Description string      `json:"description,omitempty"`
	Metadata    db.Metadata `json:"metadata,omitempty"`
}

// NewAsset holds the caller-supplied fields of an asset.
type NewAsset struct {
	Name        string      `json:"name"`
	AssetType   string      `json:"asset_type"`
	Status      string      `json:"status,omitempty"`
	Description string      `json:"description,omitempty"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	Metadata    db.Metadata `json:"metadata,omitempty"`
}

// NewShot holds the caller-supplied fields of a shot. Nil frames take the
// 1001-1100 defaults.
type NewShot struct {
	Sequence    string      `json:"sequence"`
	Name        string      `json:"name"`
	FrameStart  *int        `json:"frame_start,omitempty"`
	FrameEnd    *int        `json:"frame_end,omitempty"`
	Status      string      `json:"status,omitempty"`
	Description string      `json:"description,omitempty"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	Metadata    db.Metadata `json:"metadata,omitempty"`
}

// NewTask holds the caller-supplied fields of a task. A nil Priority takes
// the default of 50.
type NewTask struct {
	Name     string      `json:"name"`
	Status   string      `json:"status,omitempty"`
	Assignee string      `json:"assignee,omitempty"`
	DueDate  *time.Time  `json:"due_date,omitempty"`
	Priority *int        `json:"priority,omitempty"`
	Metadata db.Metadata `json:"metadata,omitempty"`
}

// NewVersion holds the caller-supplied fields of a version. The version
// number is always allocated by the store.
type NewVersion struct {
	Status    string      `json:"status,omitempty"`
	Path      string      `json:"path,omitempty"`
	Thumbnail string      `json:"thumbnail,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	CreatedBy string      `json:"created_by,omitempty"`
	Metadata  db.Metadata `json:"metadata,omitempty"`
}

// DefaultProjectCode derives a code from a project name: upper case with
// spaces replaced by underscores.
func DefaultProjectCode(name string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), " ", "_")
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return grid.ErrValidation(field, "must not be empty")
	}
	return nil
}

func validPriority(p int) error {
	if p < 0 || p > 100 {
		return grid.ErrValidation("priority", fmt.Sprintf("%d is outside 0-100", p))
	}
	return nil
}

func validMetadata(m db.Metadata) error {
	if err := m.Validate(); err != nil {
		return grid.ErrValidation("metadata", err.Error())
	}
	return nil
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func (in NewProject) record() (*db.Project, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	if err := required("code", in.Code); err != nil {
		return nil, err
	}
	if err := validMetadata(in.Metadata); err != nil {
		return nil, err
	}
	return &db.Project{
		Name:        in.Name,
		Code:        in.Code,
		Status:      orDefault(in.Status, db.ProjectActive),
		Description: in.Description,
		Metadata:    in.Metadata,
	}, nil
}

func (in NewAsset) record(projectID int64) (*db.Asset, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	if err := required("asset_type", in.AssetType); err != nil {
		return nil, err
	}
	if err := validMetadata(in.Metadata); err != nil {
		return nil, err
	}
	return &db.Asset{
		ProjectID:   projectID,
		Name:        in.Name,
		AssetType:   in.AssetType,
		Status:      orDefault(in.Status, db.StatusWaiting),
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		Metadata:    in.Metadata,
	}, nil
}

func (in NewShot) record(projectID int64) (*db.Shot, error) {
	if err := required("sequence", in.Sequence); err != nil {
		return nil, err
	}
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	start, end := db.DefaultFrameStart, db.DefaultFrameEnd
	if in.FrameStart != nil {
		start = *in.FrameStart
	}
	if in.FrameEnd != nil {
		end = *in.FrameEnd
	}
	if err := validMetadata(in.Metadata); err != nil {
		return nil, err
	}
	if end < start {
		return nil, grid.ErrValidation("frame_end", fmt.Sprintf("frame_end %d is before frame_start %d", end, start))
	}
	return &db.Shot{
		ProjectID:   projectID,
		Sequence:    in.Sequence,
		Name:        in.Name,
		FrameStart:  start,
		FrameEnd:    end,
		Status:      orDefault(in.Status, db.StatusWaiting),
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		Metadata:    in.Metadata,
	}, nil
}

func (in NewTask) record(owner db.EntityRef) (*db.Task, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	priority := db.DefaultTaskPriority
	if in.Priority != nil {
		priority = *in.Priority
	}
	if err := validPriority(priority); err != nil {
		return nil, err
	}
	if err := validMetadata(in.Metadata); err != nil {
		return nil, err
	}
	return &db.Task{
		EntityKind: owner.Kind,
		EntityID:   owner.ID,
		Name:       in.Name,
		Status:     orDefault(in.Status, db.StatusWaiting),
		Assignee:   in.Assignee,
		DueDate:    in.DueDate,
		Priority:   priority,
		Metadata:   in.Metadata,
	}, nil
}

func (in NewVersion) record(taskID int64) (*db.Version, error) {
	if err := validMetadata(in.Metadata); err != nil {
		return nil, err
	}
	return &db.Version{
		TaskID:    taskID,
		Status:    orDefault(in.Status, db.VersionPendingReview),
		Path:      in.Path,
		Thumbnail: in.Thumbnail,
		Notes:     in.Notes,
		CreatedBy: in.CreatedBy,
		Metadata:  in.Metadata,
	}, nil
}

func validPatch(patch db.TaskPatch) error {
	if patch.Status != nil {
		if err := required("status", *patch.Status); err != nil {
			return err
		}
	}
	if patch.Priority != nil {
		return validPriority(*patch.Priority)
	}
	return nil
}
