package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// newShotCmd creates the shot command group.
func (a *app) newShotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shot",
		Aliases: []string{"shots"},
		Short:   "Manage shots",
	}
	cmd.AddCommand(a.newShotCreateCmd(), a.newShotListCmd())
	return cmd
}

func (a *app) newShotCreateCmd() *cobra.Command {
	var in studio.NewShot
	var start, end int
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "create <project> <sequence> <name>",
		Short: "Create a shot in a project",
		Long: `Create a shot. Frames default to 1001-1100.

Examples:
  opengrid shot create BIG_FILM sq010 sh010
  opengrid shot create BIG_FILM sq010 sh020 --start 1001 --end 1048`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			in.Sequence = args[1]
			in.Name = args[2]
			if cmd.Flags().Changed("start") {
				in.FrameStart = &start
			}
			if cmd.Flags().Changed("end") {
				in.FrameEnd = &end
			}
			md, err := metadata(meta)
			if err != nil {
				return err
			}
			in.Metadata = md

			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				shot, err := st.CreateShot(ctx, studio.ProjectCode(code), in)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(shot, func() { p.success("Created shot", code+"/"+shot.Name) })
			})
		},
	}

	cmd.Flags().IntVar(&start, "start", db.DefaultFrameStart, "first frame")
	cmd.Flags().IntVar(&end, "end", db.DefaultFrameEnd, "last frame")
	cmd.Flags().StringVar(&in.Description, "description", "", "shot description")
	cmd.Flags().StringVar(&in.Status, "status", "", "initial status (default waiting)")
	cmd.Flags().StringVar(&in.Thumbnail, "thumbnail", "", "thumbnail path")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "metadata key=value pairs")
	return cmd
}

func (a *app) newShotListCmd() *cobra.Command {
	var f db.ShotFilter

	cmd := &cobra.Command{
		Use:     "list <project>",
		Aliases: []string{"ls"},
		Short:   "List shots in a project",
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
				f.ProjectID = project.ID

				shots, err := st.FindShots(ctx, f)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(shots, func() {
					if len(shots) == 0 {
						p.line("No shots in %s.", code)
						return
					}
					t := newTable("ID", "SEQUENCE", "NAME", "FRAMES", "DURATION", "STATUS").withStatus(5)
					for _, sh := range shots {
						t.add(
							strconv.FormatInt(sh.ID, 10),
							sh.Sequence,
							sh.Name,
							fmt.Sprintf("%d-%d", sh.FrameStart, sh.FrameEnd),
							strconv.Itoa(sh.Duration()),
							sh.Status,
						)
					}
					p.render(t)
				})
			})
		},
	}

	cmd.Flags().StringVar(&f.Sequence, "sequence", "", "filter by sequence")
	cmd.Flags().StringVarP(&f.Status, "status", "s", "", "filter by status")
	cmd.Flags().StringToStringVar(&f.Metadata, "where", nil, "filter by metadata path=value (gjson paths)")
	return cmd
}
