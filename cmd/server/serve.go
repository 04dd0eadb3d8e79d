package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dibarradev/to-do/internal/logging"
	"github.com/dibarradev/to-do/internal/server"
	"github.com/dibarradev/to-do/internal/server/metrics"
)

// NewServeCmd создает подкоманду serve
func NewServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Migrations are applied on startup.
SIGINT or SIGTERM trigger a graceful shutdown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	if cfg.EphemeralSecrets {
		logger.Warn("JWT secrets are not configured, using random ones: sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.OpenStorage(ctx, logger, cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	srv, err := server.New(cfg, logger, store, metrics.New(), Version)
	if err != nil {
		return err
	}

	logger.Info("starting to-do server",
		slog.String("version", Version),
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.HTTPAddr),
		slog.String("driver", cfg.DB.Driver))

	return srv.Run(ctx)
}
