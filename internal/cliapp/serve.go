package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kestrelrun/kestrel/internal/config"
	"github.com/kestrelrun/kestrel/internal/httpapi"
	"github.com/kestrelrun/kestrel/internal/scheduler"
	"github.com/kestrelrun/kestrel/internal/store"
)

func newServeCommand() *cobra.Command {
	var configFile string
	var bind string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the orchestrator server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if bind != "" {
				cfg.Bind = bind
			}
			if port != 0 {
				cfg.Port = port
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			s := store.New()
			sched := scheduler.New(s, logger)
			router := httpapi.NewRouter(s, sched, logger)

			logger.Info("listening", zap.String("addr", cfg.Addr()))
			return router.Run(cfg.Addr())
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "path to a YAML config file (overlaid on defaults; flags take precedence)")
	cmd.Flags().StringVar(&bind, "bind", "", "address to bind (default 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default 3000)")
	return cmd
}
