// Package server собирает HTTP сервер: хранилище, сервис аутентификации,
// handlers, middleware и фоновые задачи.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dibarradev/to-do/internal/config"
	"github.com/dibarradev/to-do/internal/crypto"
	"github.com/dibarradev/to-do/internal/server/auth"
	"github.com/dibarradev/to-do/internal/server/handlers"
	"github.com/dibarradev/to-do/internal/server/metrics"
	"github.com/dibarradev/to-do/internal/server/middleware"
	"github.com/dibarradev/to-do/internal/server/notify"
	"github.com/dibarradev/to-do/internal/server/storage"
	"github.com/dibarradev/to-do/internal/server/token"
)

// Таймауты
const (
	ShutdownTimeout   = 10 * time.Second
	NotifyTimeout     = 10 * time.Second
	ReadHeaderTimeout = 10 * time.Second
)

// Server HTTP API вместе с фоновыми задачами
type Server struct {
	logger   *slog.Logger
	handler  http.Handler
	janitor  *Janitor
	limiter  *middleware.RateLimiter
	notifier *notify.Async
	addr     string
}

// New собирает сервер поверх открытого хранилища
// Хранилище закрывает вызывающий
func New(cfg *config.Config, logger *slog.Logger, store storage.Storage, m *metrics.Metrics, version string) (*Server, error) {
	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	notifier := notify.NewAsync(notify.NewLogNotifier(logger), logger, NotifyTimeout)

	service := auth.NewService(logger, store, crypto.NewBcryptHasher(crypto.DefaultBcryptCost), issuer, notifier, auth.Options{
		Metrics:          m,
		ResetTTL:         cfg.Reset.TTL,
		ExposeResetToken: cfg.Reset.Expose,
	})

	limiter := middleware.NewRateLimiter(cfg.Limit.Requests, cfg.Limit.Window, logger)

	mux := NewRouter(Routes{
		Auth: handlers.NewAuthHandler(logger, service, handlers.CookieConfig{
			MaxAge: cfg.JWT.RefreshTTL,
			Secure: cfg.IsProduction(),
		}),
		Tasks:       handlers.NewTaskHandler(logger, store),
		Health:      handlers.NewHealthHandler(logger, store, version),
		Metrics:     m,
		RequireAuth: middleware.AuthMiddleware(logger, issuer),
		RateLimit:   limiter.Middleware,
	})

	// Порядок: metrics -> logging -> recovery -> cors -> mux
	var h http.Handler = mux
	h = middleware.CORSMiddleware(cfg.CORS)(h)
	h = middleware.RecoveryMiddleware(logger)(h)
	h = middleware.LoggingMiddleware(logger, "/api/health", "/metrics")(h)
	h = middleware.MetricsMiddleware(m)(h)

	return &Server{
		logger:   logger,
		handler:  h,
		janitor:  NewJanitor(logger, service, cfg.Janitor),
		limiter:  limiter,
		notifier: notifier,
		addr:     cfg.HTTPAddr,
	}, nil
}

// Handler корневой handler со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close останавливает фоновые goroutine, если Serve не вызывался
func (s *Server) Close() {
	s.limiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), NotifyTimeout)
	defer cancel()
	_ = s.notifier.Wait(ctx)
}

// Run слушает адрес из конфигурации до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.limiter.Stop()
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx, затем мягко завершает работу:
// ждет активные запросы, останавливает фоновые задачи и дожидается отправки уведомлений
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server started", slog.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.janitor.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.limiter.Stop()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotifyTimeout)
	defer cancel()
	if werr := s.notifier.Wait(drainCtx); werr != nil {
		s.logger.Warn("pending reset notifications dropped", slog.Any("error", werr))
	}

	s.logger.Info("server stopped")
	return err
}
