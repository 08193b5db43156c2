package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/opengrid/internal/config"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// newInitCmd creates the init command.
func (a *app) newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a studio database in the current directory",
		Long: `Create the studio database schema and write .opengrid/config.yaml.

The schema is created idempotently, so running init against an existing
database is safe. An existing config file is kept unless --force is given.

Examples:
  opengrid init
  opengrid init --db postgres://opengrid@localhost/studio
  opengrid init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			p := a.printer(cmd)

			cfgPath := filepath.Join(cwd, config.Dir, config.FileName)
			_, statErr := os.Stat(cfgPath)
			switch {
			case force || errors.Is(statErr, fs.ErrNotExist):
				if _, err := config.Init(cwd, force); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				p.success("Wrote config", cfgPath)
			case statErr != nil:
				return fmt.Errorf("check config: %w", statErr)
			default:
				p.line("Config already exists: %s", cfgPath)
			}

			return a.withStudio(cmd, func(ctx context.Context, st *studio.Studio) error {
				p.success("Database ready", a.cfg.Redacted().DSN())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
