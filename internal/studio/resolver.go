package studio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
)

// ProjectRef identifies a project by id or by code.
//
// Ids (including handles taken from a loaded project) are trusted without a
// lookup; a bad id surfaces when the backend rejects the reference. Codes are
// looked up, and an unknown code fails with NotFound before anything is
// written.
type ProjectRef struct {
	id   int64
	code string
}

// ProjectID references a project by surrogate id.
func ProjectID(id int64) ProjectRef { return ProjectRef{id: id} }

// ProjectCode references a project by its unique code.
func ProjectCode(code string) ProjectRef { return ProjectRef{code: code} }

// ProjectHandle references an already-loaded project.
func ProjectHandle(p *db.Project) ProjectRef {
	if p == nil {
		return ProjectRef{}
	}
	return ProjectRef{id: p.ID}
}

// IsZero reports whether the ref names nothing.
func (r ProjectRef) IsZero() bool {
	return r.id == 0 && r.code == ""
}

func (r ProjectRef) String() string {
	if r.id != 0 {
		return strconv.FormatInt(r.id, 10)
	}
	return r.code
}

// OwnerRef derives the task owner reference from a loaded asset or shot.
func OwnerRef(owner db.Owner) db.EntityRef {
	return owner.Ref()
}

// ParseEntityKind accepts "asset" or "shot" in any case.
func ParseEntityKind(s string) (db.EntityKind, error) {
	kind := db.EntityKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", grid.ErrValidation("entity_kind", fmt.Sprintf("%q is not one of asset, shot", s))
	}
	return kind, nil
}

// resolveProject turns a ProjectRef into a project id.
func (s *Studio) resolveProject(ctx context.Context, ref ProjectRef) (int64, error) {
	switch {
	case ref.id != 0:
		return ref.id, nil
	case ref.code != "":
		p, err := s.backend.GetProjectByCode(ctx, ref.code)
		if err != nil {
			return 0, err
		}
		if p == nil {
			return 0, grid.ErrNotFound("project", ref.code)
		}
		return p.ID, nil
	default:
		return 0, grid.ErrValidation("project", "a project id or code is required")
	}
}

// resolveOwner checks that the asset or shot behind ref exists.
func (s *Studio) resolveOwner(ctx context.Context, ref db.EntityRef) error {
	if !ref.Kind.Valid() {
		return grid.ErrValidation("entity_kind", fmt.Sprintf("%q is not one of asset, shot", ref.Kind))
	}
	ok, err := s.backend.EntityExists(ctx, ref)
	if err != nil {
		return err
	}
	if !ok {
		return grid.ErrNotFound(string(ref.Kind), strconv.FormatInt(ref.ID, 10))
	}
	return nil
}
