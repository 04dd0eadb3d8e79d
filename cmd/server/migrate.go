package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dibarradev/to-do/internal/logging"
	"github.com/dibarradev/to-do/internal/server"
)

// NewMigrateCmd создает подкоманду migrate
func NewMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Long:  `Apply all pending migrations for the configured storage driver and exit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			if err != nil {
				return err
			}

			// Открытие хранилища применяет миграции
			store, err := server.OpenStorage(cmd.Context(), logger, cfg.DB)
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				logger.Error("failed to close storage", slog.Any("error", err))
			}

			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
