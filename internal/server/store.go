package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dibarradev/to-do/internal/config"
	"github.com/dibarradev/to-do/internal/server/storage"
	"github.com/dibarradev/to-do/internal/server/storage/postgres"
	"github.com/dibarradev/to-do/internal/server/storage/sqlite"
)

// OpenStorage открывает хранилище выбранного драйвера и применяет миграции
func OpenStorage(ctx context.Context, logger *slog.Logger, db config.DatabaseConfig) (storage.Storage, error) {
	switch db.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(ctx, db.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		logger.InfoContext(ctx, "storage ready", slog.String("driver", db.Driver), slog.String("path", db.DSN))
		return store, nil

	case config.DriverPostgres:
		store, err := postgres.New(ctx, db.DSN, postgres.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		// DSN содержит пароль, не логируем
		logger.InfoContext(ctx, "storage ready", slog.String("driver", db.Driver))
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", db.Driver)
	}
}
