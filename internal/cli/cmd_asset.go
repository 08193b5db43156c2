package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/opengrid/internal/db"
	grid "github.com/randalmurphal/opengrid/internal/errors"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// newAssetCmd creates the asset command group.
func (a *app) newAssetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "asset",
		Aliases: []string{"assets"},
		Short:   "Manage assets",
	}
	cmd.AddCommand(a.newAssetCreateCmd(), a.newAssetListCmd())
	return cmd
}

func (a *app) newAssetCreateCmd() *cobra.Command {
	var in studio.NewAsset
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "create <project> <name>",
		Short: "Create an asset in a project",
		Long: `Create an asset in the project with the given code.

Examples:
  opengrid asset create BIG_FILM hero --type character
  opengrid asset create BIG_FILM sword -t prop --description "Hero's sword"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			in.Name = args[1]
			md, err := metadata(meta)
			if err != nil {
				return err
			}
			in.Metadata = md

			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				asset, err := st.CreateAsset(ctx, studio.ProjectCode(code), in)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(asset, func() { p.success("Created asset", code+"/"+asset.Name) })
			})
		},
	}

	cmd.Flags().StringVarP(&in.AssetType, "type", "t", db.AssetOther, "asset type (character, prop, environment, vehicle, fx, other)")
	cmd.Flags().StringVar(&in.Description, "description", "", "asset description")
	cmd.Flags().StringVar(&in.Status, "status", "", "initial status (default waiting)")
	cmd.Flags().StringVar(&in.Thumbnail, "thumbnail", "", "thumbnail path")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "metadata key=value pairs")
	return cmd
}

func (a *app) newAssetListCmd() *cobra.Command {
	var f db.AssetFilter

	cmd := &cobra.Command{
		Use:     "list <project>",
		Aliases: []string{"ls"},
		Short:   "List assets in a project",
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

				assets, err := st.FindAssets(ctx, f)
				if err != nil {
					return err
				}
				p := a.printer(cmd)
				return p.emit(assets, func() {
					if len(assets) == 0 {
						p.line("No assets in %s.", code)
						return
					}
					t := newTable("ID", "NAME", "TYPE", "STATUS", "DESCRIPTION").withStatus(3)
					for _, as := range assets {
						t.add(strconv.FormatInt(as.ID, 10), as.Name, as.AssetType, as.Status, as.Description)
					}
					p.render(t)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&f.AssetType, "type", "t", "", "filter by asset type")
	cmd.Flags().StringVarP(&f.Status, "status", "s", "", "filter by status")
	cmd.Flags().StringToStringVar(&f.Metadata, "where", nil, "filter by metadata path=value (gjson paths)")
	return cmd
}
