package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// entityPath is a PROJECT/entity[/task] argument.
type entityPath struct {
	Project string
	Entity  string
	Task    string
	Kind    db.EntityKind
}

func (p entityPath) String() string {
	if p.Task == "" {
		return p.Project + "/" + p.Entity
	}
	return p.Project + "/" + p.Entity + "/" + p.Task
}

// parseEntityPath splits PROJECT/entity (withTask false) or
// PROJECT/entity/task (withTask true). shot selects shot owners.
func parseEntityPath(arg string, withTask, shot bool) (entityPath, error) {
	want, usage := 2, "PROJECT/entity"
	if withTask {
		want, usage = 3, "PROJECT/entity/task"
	}
	parts := strings.Split(arg, "/")
	if len(parts) != want {
		return entityPath{}, grid.ErrValidation("path", fmt.Sprintf("%q: use %s", arg, usage))
	}
	for _, p := range parts {
		if p == "" {
			return entityPath{}, grid.ErrValidation("path", fmt.Sprintf("%q has an empty segment", arg))
		}
	}

	p := entityPath{Project: parts[0], Entity: parts[1], Kind: db.KindAsset}
	if withTask {
		p.Task = parts[2]
	}
	if shot {
		p.Kind = db.KindShot
	}
	return p, nil
}

// owner looks up the asset or shot the path names.
func (p entityPath) owner(ctx context.Context, st *studio.Studio) (db.Owner, error) {
	project := studio.ProjectCode(p.Project)
	switch p.Kind {
	case db.KindShot:
		sh, err := st.GetShot(ctx, project, p.Entity)
		if err != nil {
			return nil, err
		}
		if sh == nil {
			return nil, grid.ErrNotFound("shot", p.Project+"/"+p.Entity)
		}
		return sh, nil
	default:
		a, err := st.GetAsset(ctx, project, p.Entity)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, grid.ErrNotFound("asset", p.Project+"/"+p.Entity)
		}
		return a, nil
	}
}

// task looks up the task the path names.
func (p entityPath) task(ctx context.Context, st *studio.Studio) (*db.Task, error) {
	owner, err := p.owner(ctx, st)
	if err != nil {
		return nil, err
	}
	t, err := st.GetTask(ctx, owner.Ref(), p.Task)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, grid.ErrNotFound("task", p.String())
	}
	return t, nil
}

// dueDateLayout is the --due flag format.
const dueDateLayout = "2006-01-02"

func parseDueDate(s string) (*time.Time, error) {
	d, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return nil, grid.ErrValidation("due", fmt.Sprintf("%q is not a YYYY-MM-DD date", s))
	}
	return &d, nil
}

func formatDueDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dueDateLayout)
}

// metadata converts --meta key=value flags into entity metadata.
func metadata(kv map[string]string) (db.Metadata, error) {
	if len(kv) == 0 {
		return nil, nil
	}
	return db.NewMetadata(kv)
}
