package cli

import (
	"github.com/spf13/cobra"
)

// newConfigCmd creates the config command with subcommands.
func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View configuration",
		Long: `View opengrid configuration.

Configuration is loaded from these sources, later ones winning:
  1. Built-in defaults
  2. .opengrid/config.yaml, ~/.opengrid/config.yaml, or --config
  3. Environment variables (OPENGRID_*, plus DATABASE_URL)
  4. The --db flag`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as YAML",
		Long:  "Show the effective configuration as YAML. Passwords are masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cfg.Redacted().WriteYAML(cmd.OutOrStdout())
		},
	})
	return cmd
}
