package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/opengrid/internal/db"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// newVersionCmd creates the version command group.
func (a *app) newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"versions"},
		Short:   "Publish and list task versions",
	}
	cmd.AddCommand(a.newVersionCreateCmd(), a.newVersionListCmd())
	return cmd
}

func (a *app) newVersionCreateCmd() *cobra.Command {
	var in studio.NewVersion
	var shot bool
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "create <project/entity/task>",
		Short: "Publish the next version of a task",
		Long: `Publish a version. The version number is allocated by the database and
is always one more than the task's highest existing version.

Examples:
  opengrid version create BIG_FILM/hero/model --path /renders/hero_model_v001.abc
  opengrid version create BIG_FILM/sh010/anim --shot --created-by bo --notes "blocking"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseEntityPath(args[0], true, shot)
			if err != nil {
				return err
			}
			md, err := metadata(meta)
			if err != nil {
				return err
			}
			in.Metadata = md

			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				task, err := path.task(ctx, st)
				if err != nil {
					return err
				}
				v, err := st.CreateVersion(ctx, task.ID, in)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(v, func() { p.success("Created version", path.String()+" "+v.VersionString()) })
			})
		},
	}

	cmd.Flags().BoolVar(&shot, "shot", false, "the entity is a shot")
	cmd.Flags().StringVar(&in.Path, "path", "", "published file path")
	cmd.Flags().StringVar(&in.Thumbnail, "thumbnail", "", "thumbnail path")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "version notes")
	cmd.Flags().StringVar(&in.CreatedBy, "created-by", "", "author")
	cmd.Flags().StringVar(&in.Status, "status", "", "initial status (default pending_review)")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "metadata key=value pairs")
	return cmd
}

func (a *app) newVersionListCmd() *cobra.Command {
	var shot bool
	var f db.VersionFilter

	cmd := &cobra.Command{
		Use:     "list <project/entity/task>",
		Aliases: []string{"ls"},
		Short:   "List a task's versions in version order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseEntityPath(args[0], true, shot)
			if err != nil {
				return err
			}

			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				task, err := path.task(ctx, st)
				if err != nil {
					return err
				}
				f.TaskID = task.ID

				versions, err := st.FindVersions(ctx, f)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(versions, func() {
					if len(versions) == 0 {
						p.line("No versions of %s.", path)
						return
					}
					t := newTable("ID", "VERSION", "STATUS", "CREATED BY", "PATH").withStatus(2)
					for _, v := range versions {
						t.add(strconv.FormatInt(v.ID, 10), v.VersionString(), v.Status, v.CreatedBy, v.Path)
					}
					p.render(t)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&shot, "shot", false, "the entity is a shot")
	cmd.Flags().StringVarP(&f.Status, "status", "s", "", "filter by status")
	cmd.Flags().StringVar(&f.CreatedBy, "created-by", "", "filter by author")
	cmd.Flags().StringToStringVar(&f.Metadata, "where", nil, "filter by metadata path=value (gjson paths)")
	return cmd
}
