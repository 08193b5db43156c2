package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/opengrid/internal/api"
	"github.com/randalmurphal/opengrid/internal/studio"
)

// newServeCmd creates the serve command for the API server.
func (a *app) newServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the opengrid REST API.

The listen address comes from server.host and server.port in the config
(OPENGRID_HOST and OPENGRID_PORT are also honoured); the flags override both.

Example:
  opengrid serve              # 0.0.0.0:8000
  opengrid serve --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srvCfg := a.cfg.Server
			if cmd.Flags().Changed("host") {
				srvCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				srvCfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withStudio(cmd, func(_ context.Context, st *studio.Studio) error {
				server, err := api.New(&api.Config{
					Addr:        srvCfg.Addr(),
					Version:     Version,
					Logger:      a.logger,
					Studio:      st,
					CORSOrigins: srvCfg.CORSOrigins,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Serving OpenGrid API on http://%s\n", srvCfg.Addr())
				fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
				return server.StartContext(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}
