package server

import (
	"context"
	"log/slog"
	"time"
)

// ResetSweeper очищает просроченные reset token
type ResetSweeper interface {
	SweepExpiredResets(ctx context.Context) (int64, error)
}

// Janitor периодически очищает просроченные reset token
type Janitor struct {
	sweeper  ResetSweeper
	logger   *slog.Logger
	interval time.Duration
}

// NewJanitor создает janitor
func NewJanitor(logger *slog.Logger, sweeper ResetSweeper, interval time.Duration) *Janitor {
	return &Janitor{
		sweeper:  sweeper,
		logger:   logger,
		interval: interval,
	}
}

// RunOnce выполняет один проход очистки
func (j *Janitor) RunOnce(ctx context.Context) {
	cleared, err := j.sweeper.SweepExpiredResets(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to sweep expired reset tokens", slog.Any("error", err))
		return
	}
	if cleared > 0 {
		j.logger.InfoContext(ctx, "expired reset tokens cleared", slog.Int64("count", cleared))
	}
}

// Run очищает reset token сразу и затем каждые interval до отмены ctx
func (j *Janitor) Run(ctx context.Context) error {
	j.RunOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}
