package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// newTaskCmd creates the task command group.
func (a *app) newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks on assets and shots",
		Long: `Manage tasks. Owners are addressed as PROJECT/entity, tasks as
PROJECT/entity/task. The entity is an asset unless --shot is given.`,
	}
	cmd.AddCommand(a.newTaskCreateCmd(), a.newTaskUpdateCmd(), a.newTaskListCmd())
	return cmd
}

func (a *app) newTaskCreateCmd() *cobra.Command {
	var in studio.NewTask
	var shot bool
	var due string
	var priority int
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "create <project/entity> <name>",
		Short: "Create a task on an asset or shot",
		Long: `Create a task.

Examples:
  opengrid task create BIG_FILM/hero model --assignee ana
  opengrid task create BIG_FILM/sh010 anim --shot --priority 80 --due 2026-03-01`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseEntityPath(args[0], false, shot)
			if err != nil {
				return err
			}
			in.Name = args[1]
			if cmd.Flags().Changed("priority") {
				in.Priority = &priority
			}
			if due != "" {
				if in.DueDate, err = parseDueDate(due); err != nil {
					return err
				}
			}
			md, err := metadata(meta)
			if err != nil {
				return err
			}
			in.Metadata = md

			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				owner, err := path.owner(ctx, st)
				if err != nil {
					return err
				}
				task, err := st.CreateTask(ctx, owner.Ref(), in)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(task, func() { p.success("Created task", path.String()+"/"+task.Name) })
			})
		},
	}

	cmd.Flags().BoolVar(&shot, "shot", false, "the entity is a shot")
	cmd.Flags().StringVarP(&in.Assignee, "assignee", "a", "", "assignee")
	cmd.Flags().StringVar(&in.Status, "status", "", "initial status (default waiting)")
	cmd.Flags().IntVar(&priority, "priority", db.DefaultTaskPriority, "priority 0-100")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "metadata key=value pairs")
	return cmd
}

func (a *app) newTaskUpdateCmd() *cobra.Command {
	var shot bool
	var status, assignee, due string
	var priority int

	cmd := &cobra.Command{
		Use:   "update <project/entity/task>",
		Short: "Update a task's status, assignee, due date or priority",
		Long: `Update a task. Only the flags given are changed; an empty --assignee
clears the assignee.

Examples:
  opengrid task update BIG_FILM/hero/model --status in_progress
  opengrid task update BIG_FILM/sh010/anim --shot --assignee bo --priority 90`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseEntityPath(args[0], true, shot)
			if err != nil {
				return err
			}

			var patch db.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("status") {
				patch.Status = &status
			}
			if flags.Changed("assignee") {
				patch.Assignee = &assignee
			}
			if flags.Changed("priority") {
				patch.Priority = &priority
			}
			if flags.Changed("due") {
				if patch.DueDate, err = parseDueDate(due); err != nil {
					return err
				}
			}
			if patch.Empty() {
				return grid.ErrValidation("update", "nothing to change: pass --status, --assignee, --priority or --due")
			}

			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				task, err := path.task(ctx, st)
				if err != nil {
					return err
				}
				if err := st.UpdateTask(ctx, task.ID, patch); err != nil {
					return err
				}
				updated, err := st.GetTaskByID(ctx, task.ID)
				if err != nil {
					return err
				}
				if updated == nil {
					return grid.ErrNotFound("task", path.String())
				}
				p := a.printer(cmd)
				return p.emit(updated, func() { p.success("Updated task", path.String()) })
			})
		},
	}

	cmd.Flags().BoolVar(&shot, "shot", false, "the entity is a shot")
	cmd.Flags().StringVarP(&status, "status", "s", "", "new status")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "new assignee")
	cmd.Flags().IntVar(&priority, "priority", 0, "new priority 0-100")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD)")
	return cmd
}

// taskRow is one line of task list output.
type taskRow struct {
	Entity string   `json:"entity" yaml:"entity"`
	Task   *db.Task `json:"task" yaml:"task"`
}

func (a *app) newTaskListCmd() *cobra.Command {
	var status, assignee string
	var where map[string]string

	cmd := &cobra.Command{
		Use:     "list <project>",
		Aliases: []string{"ls"},
		Short:   "List the tasks of every asset and shot in a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				project, err := st.GetProject(ctx, code)
				if err != nil {
					return err
				}
				if project == nil {
					return grid.ErrNotFound("project", code)
				}

				assets, err := st.FindAssets(ctx, db.AssetFilter{ProjectID: project.ID})
				if err != nil {
					return err
				}
				shots, err := st.FindShots(ctx, db.ShotFilter{ProjectID: project.ID})
				if err != nil {
					return err
				}

				type owned struct {
					name  string
					owner db.Owner
				}
				owners := make([]owned, 0, len(assets)+len(shots))
				for _, as := range assets {
					owners = append(owners, owned{as.Name, as})
				}
				for _, sh := range shots {
					owners = append(owners, owned{sh.Name, sh})
				}

				rows := make([]taskRow, 0)
				for _, o := range owners {
					ref := o.owner.Ref()
					tasks, err := st.FindTasks(ctx, db.TaskFilter{
						Entity:   &ref,
						Status:   status,
						Assignee: assignee,
						Metadata: where,
					})
					if err != nil {
						return err
					}
					for _, t := range tasks {
						rows = append(rows, taskRow{Entity: o.name, Task: t})
					}
				}

				p := a.printer(cmd)
				return p.emit(rows, func() {
					if len(rows) == 0 {
						p.line("No tasks in %s.", code)
						return
					}
					t := newTable("ID", "KIND", "ENTITY", "TASK", "STATUS", "ASSIGNEE", "PRIORITY", "DUE").withStatus(4)
					for _, r := range rows {
						t.add(
							strconv.FormatInt(r.Task.ID, 10),
							string(r.Task.EntityKind),
							r.Entity,
							r.Task.Name,
							r.Task.Status,
							r.Task.Assignee,
							strconv.Itoa(r.Task.Priority),
							formatDueDate(r.Task.DueDate),
						)
					}
					p.render(t)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "filter by assignee")
	cmd.Flags().StringToStringVar(&where, "where", nil, "filter by metadata path=value (gjson paths)")
	return cmd
}
