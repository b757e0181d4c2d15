package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datalink/internal/dispatch"
	"github.com/leapstack-labs/datalink/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the DataLink backend server",
		Long: `Start an HTTP server that dispatches "Service.method" commands,
serves JSON row files from the data directory by name, and pushes
change notifications over a server-sent event stream.

With --watch, changes to the data directory invalidate loaded tables
and ping connected clients so they can drop stale caches.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Verbose)

			registry := dispatch.NewRegistry(logger)
			srv := server.New(server.Config{
				Registry: registry,
				DataDir:  cfg.DataDir,
				Port:     cfg.Port,
				Watch:    cfg.Watch,
				Logger:   logger,
			})
			if err := registry.Register("Data", server.NewDataService(srv)); err != nil {
				return fmt.Errorf("failed to register data service: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "DataLink listening on :%d (data: %s)\n", cfg.Port, cfg.DataDir)
			return srv.Serve(cmd.Context())
		},
	}
}
