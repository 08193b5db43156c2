// Package cli implements the opengrid command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/opengrid/internal/config"
	"github.com/randalmurphal/opengrid/internal/db"
	"github.com/randalmurphal/opengrid/internal/db/driver"
	grid "github.com/randalmurphal/opengrid/internal/errors"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// app carries the global flags and the state loaded from them. Each command
// tree gets its own app so tests can run commands in isolation.
type app struct {
	cfgFile string
	dbURL   string
	output  string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
}

// rootCmd builds the command tree.
func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opengrid",
		Short: "Lightweight production tracking for media pipelines",
		Long: `opengrid tracks projects, assets, shots, tasks and versions in a SQLite
file or a PostgreSQL database.

Quick start:
  opengrid init                              Create the database and config
  opengrid project create "Big Film"         Create project BIG_FILM
  opengrid asset create BIG_FILM hero -t character
  opengrid task create BIG_FILM/hero model   Add a task to the asset
  opengrid version create BIG_FILM/hero/model --path /renders/hero_v001.exr
  opengrid serve                             Run the HTTP API`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .opengrid/config.yaml)")
	flags.StringVar(&a.dbURL, "db", "", "database: SQLite path or postgres:// URL (overrides config)")
	flags.StringVarP(&a.output, "output", "o", outputTable, "output format: table, json or yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		a.newInitCmd(),
		a.newProjectCmd(),
		a.newAssetCmd(),
		a.newShotCmd(),
		a.newTaskCmd(),
		a.newVersionCmd(),
		a.newServeCmd(),
		a.newConfigCmd(),
	)
	return cmd
}

// Execute runs the CLI and prints any error to stderr.
func Execute() error {
	a := &app{}
	if err := a.rootCmd().ExecuteContext(context.Background()); err != nil {
		PrintError(os.Stderr, err, a.verbose)
		return err
	}
	return nil
}

// load reads the configuration and applies the global flag overrides.
func (a *app) load(cmd *cobra.Command, args []string) error {
	switch a.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return grid.ErrValidation("output", fmt.Sprintf("%q is not table, json or yaml", a.output))
	}

	cfg, err := config.Load(config.NewViper(a.cfgFile))
	if err != nil {
		return err
	}
	if a.dbURL != "" {
		cfg.Database.URL = a.dbURL
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
	return nil
}

// openStudio opens the configured database and ensures its schema.
func (a *app) openStudio(ctx context.Context) (*studio.Studio, error) {
	dialect := a.cfg.Dialect()
	a.logger.Debug("opening studio database", "dialect", dialect)

	sdb, err := db.OpenStudioWithDialect(ctx, a.cfg.DSN(), dialect)
	if err != nil {
		return nil, err
	}
	if dialect == driver.DialectPostgres && a.cfg.Database.Postgres.PoolMax > 0 {
		sdb.Driver().DB().SetMaxOpenConns(a.cfg.Database.Postgres.PoolMax)
	}
	return studio.New(sdb), nil
}

// withStudio opens the store for the duration of fn.
func (a *app) withStudio(cmd *cobra.Command, fn func(ctx context.Context, st *studio.Studio) error) error {
	ctx := cmd.Context()
	st, err := a.openStudio(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return fn(ctx, st)
}

// printer returns the output printer for cmd.
func (a *app) printer(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), a.output)
}
