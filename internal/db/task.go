package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	grid "github.com/randalmurphal/opengrid/internal/errors"
)

const taskColumns = `id, entity_kind, entity_id, name, status, assignee, due_date, priority, created_at, metadata`

// CreateTask inserts t and fills in its ID and CreatedAt.
//
// The owner is a discriminated reference rather than a foreign key, so
// existence of the asset or shot is not checked here.
func (s *StudioDB) CreateTask(ctx context.Context, t *Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now()
	}
	if len(t.Metadata) == 0 {
		t.Metadata = EmptyMetadata()
	}

	err := s.RunInTx(ctx, func(tx *TxOps) error {
		return tx.QueryRow(`
			INSERT INTO tasks (entity_kind, entity_id, name, status, assignee, due_date, priority, created_at, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`, string(t.EntityKind), t.EntityID, t.Name, t.Status, nullString(t.Assignee),
			optionalTimeArg(tx.Dialect(), t.DueDate), t.Priority, timeArg(tx.Dialect(), t.CreatedAt), t.Metadata).Scan(&t.ID)
	})
	return s.classify("create task", "task", t.Owner().String()+"/"+t.Name, nil, err)
}

// GetTask returns the task with the given id, or nil if none exists.
func (s *StudioDB) GetTask(ctx context.Context, id int64) (*Task, error) {
	row := s.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get task", err)
	}
	return t, nil
}

// GetTaskByName returns the named task of an owner, or nil if none exists.
func (s *StudioDB) GetTaskByName(ctx context.Context, owner EntityRef, name string) (*Task, error) {
	row := s.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE entity_kind = ? AND entity_id = ? AND name = ?
	`, string(owner.Kind), owner.ID, name)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, grid.ErrStorage("get task", err)
	}
	return t, nil
}

// ListTasks returns the tasks matching f ordered by id.
func (s *StudioDB) ListTasks(ctx context.Context, f TaskFilter) ([]*Task, error) {
	where := f.filter()
	rows, err := s.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks`+where.Where()+` ORDER BY id`, where.Args()...)
	if err != nil {
		return nil, grid.ErrStorage("list tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, grid.ErrStorage("scan task", err)
		}
		if t.Metadata.Matches(f.Metadata) {
			tasks = append(tasks, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, grid.ErrStorage("list tasks", err)
	}
	return tasks, nil
}

// UpdateTask applies the non-nil fields of patch to task id.
// An empty patch touches nothing and returns nil.
// An empty Assignee clears the column.
func (s *StudioDB) UpdateTask(ctx context.Context, id int64, patch TaskPatch) error {
	if patch.Empty() {
		return nil
	}

	err := s.RunInTx(ctx, func(tx *TxOps) error {
		var sets []string
		var args []any
		if patch.Status != nil {
			sets = append(sets, "status = ?")
			args = append(args, *patch.Status)
		}
		if patch.Assignee != nil {
			sets = append(sets, "assignee = ?")
			args = append(args, nullString(*patch.Assignee))
		}
		if patch.DueDate != nil {
			sets = append(sets, "due_date = ?")
			args = append(args, timeArg(tx.Dialect(), *patch.DueDate))
		}
		if patch.Priority != nil {
			sets = append(sets, "priority = ?")
			args = append(args, *patch.Priority)
		}
		args = append(args, id)

		res, err := tx.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return grid.ErrNotFound("task", strconv.FormatInt(id, 10))
		}
		return nil
	})
	return s.classify("update task", "task", strconv.FormatInt(id, 10), nil, err)
}

// EntityExists reports whether the asset or shot behind ref exists.
func (s *StudioDB) EntityExists(ctx context.Context, ref EntityRef) (bool, error) {
	var table string
	switch ref.Kind {
	case KindAsset:
		table = "assets"
	case KindShot:
		table = "shots"
	default:
		return false, grid.ErrValidation("entity_kind", fmt.Sprintf("unknown entity kind %q", ref.Kind))
	}

	var one int
	err := s.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, ref.ID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, grid.ErrStorage("check "+string(ref.Kind), err)
	}
	return true, nil
}

func scanTask(row scanner) (*Task, error) {
	var t Task
	var kind string
	var status, assignee sql.NullString
	var priority sql.NullInt64
	var dueDate, createdAt nullTime

	if err := row.Scan(&t.ID, &kind, &t.EntityID, &t.Name, &status, &assignee, &dueDate, &priority,
		&createdAt, &t.Metadata); err != nil {
		return nil, err
	}

	t.EntityKind = EntityKind(kind)
	t.Status = status.String
	t.Assignee = assignee.String
	t.DueDate = dueDate.Ptr()
	t.Priority = DefaultTaskPriority
	if priority.Valid {
		t.Priority = int(priority.Int64)
	}
	t.CreatedAt = createdAt.Time
	return &t, nil
}
