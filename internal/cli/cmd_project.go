package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// newProjectCmd creates the project command group.
func (a *app) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(a.newProjectCreateCmd(), a.newProjectListCmd(), a.newProjectShowCmd())
	return cmd
}

func (a *app) newProjectCreateCmd() *cobra.Command {
	var in studio.NewProject
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Long: `Create a project. The code defaults to the name upper-cased with spaces
replaced by underscores.

Examples:
  opengrid project create "Big Film"              # code BIG_FILM
  opengrid project create "Big Film" --code BF
  opengrid project create Demo --meta client=acme`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			if in.Code == "" {
				in.Code = studio.DefaultProjectCode(in.Name)
			}
			md, err := metadata(meta)
			if err != nil {
				return err
			}
			in.Metadata = md

			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				project, err := st.CreateProject(ctx, in)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(project, func() { p.success("Created project", project.Code) })
			})
		},
	}

	cmd.Flags().StringVarP(&in.Code, "code", "c", "", "project code (default: upper-cased name)")
	cmd.Flags().StringVar(&in.Description, "description", "", "project description")
	cmd.Flags().StringVar(&in.Status, "status", "", "initial status (default active)")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "metadata key=value pairs")
	return cmd
}

func (a *app) newProjectListCmd() *cobra.Command {
	var f db.ProjectFilter

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				projects, err := st.FindProjects(ctx, f)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(projects, func() {
					if len(projects) == 0 {
						p.line("No projects found. Create one with: opengrid project create \"Name\"")
						return
					}
					t := newTable("ID", "CODE", "NAME", "STATUS", "DESCRIPTION").withStatus(3)
					for _, pr := range projects {
						t.add(strconv.FormatInt(pr.ID, 10), pr.Code, pr.Name, pr.Status, pr.Description)
					}
					p.render(t)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&f.Status, "status", "s", "", "filter by status")
	cmd.Flags().StringToStringVar(&f.Metadata, "where", nil, "filter by metadata path=value (gjson paths)")
	return cmd
}

// projectSummary is the structured output of project show.
type projectSummary struct {
	db.Project `yaml:",inline"`
	Assets     int `json:"assets" yaml:"assets"`
	Shots      int `json:"shots" yaml:"shots"`
}

func (a *app) newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show a project with its asset and shot counts",
		Args:  cobra.ExactArgs(1),
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

				summary := projectSummary{Project: *project, Assets: len(assets), Shots: len(shots)}
				p := a.printer(cmd)
				return p.emit(summary, func() {
					p.details("Project "+project.Code, [][2]string{
						{"ID", strconv.FormatInt(project.ID, 10)},
						{"Name", project.Name},
						{"Status", p.status(project.Status)},
						{"Description", project.Description},
						{"Assets", strconv.Itoa(len(assets))},
						{"Shots", strconv.Itoa(len(shots))},
					})
				})
			})
		},
	}
}
