package cmd

import (
	"context"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver over HTTP.",
		Long: `serve exposes the resolver as a JSON API:

  POST /api/magnet/single  {"movieTitle", "year", "quality"}
  POST /api/magnet/list    {"letterboxdUrl"}, answered as an event stream
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, opts)
			if err != nil {
				return err
			}

			a, err := newApp(c.Context(), cfg, c.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(a.logger, cfg.ServerAddr(), a.resolver, a.orchestrator, cfg.AllowedListHosts())
			if err := srv.Start(); err != nil {
				return err
			}

			<-c.Context().Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
