// Package notify доставляет reset token пользователю.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ResetNotifier доставляет raw reset token владельцу email
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error
}

// LogNotifier пишет факт запроса сброса в лог; сам токен не логируется
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier создает LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendPasswordReset реализует ResetNotifier
func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, _ string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "password reset requested",
		slog.String("email", email),
		slog.Time("expires_at", expiresAt),
	)
	return nil
}

// Async отправляет уведомления в фоне, не задерживая HTTP ответ
type Async struct {
	next    ResetNotifier
	logger  *slog.Logger
	wg      sync.WaitGroup
	timeout time.Duration
}

// NewAsync оборачивает notifier; timeout ограничивает одну доставку
func NewAsync(next ResetNotifier, logger *slog.Logger, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Async{next: next, logger: logger, timeout: timeout}
}

// SendPasswordReset запускает доставку и сразу возвращает nil
// Контекст запроса отвязывается от отмены: ответ уже ушел клиенту
func (a *Async) SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		if err := a.next.SendPasswordReset(sendCtx, email, token, expiresAt); err != nil {
			a.logger.ErrorContext(sendCtx, "failed to deliver password reset",
				slog.String("email", email),
				slog.Any("error", err),
			)
		}
	}()
	return nil
}

// Wait ждет завершения доставок или отмены ctx
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
