package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthStore то, что health check спрашивает у хранилища
type HealthStore interface {
	Ping(ctx context.Context) error
	Driver() string
	CountUsers(ctx context.Context) (int64, error)
	CountTasks(ctx context.Context) (int64, error)
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	store   HealthStore
	now     func() time.Time
	version string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, store HealthStore, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		store:   store,
		now:     time.Now,
		version: version,
	}
}

// DatabaseStatus состояние хранилища
type DatabaseStatus struct {
	Driver    string `json:"driver"`
	Users     int64  `json:"users"`
	Tasks     int64  `json:"tasks"`
	Connected bool   `json:"connected"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Timestamp time.Time      `json:"timestamp"`
	Status    string         `json:"status"`
	Version   string         `json:"version,omitempty"`
	Database  DatabaseStatus `json:"database"`
}

// Health обрабатывает GET /api/health
// 503 если хранилище недоступно
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: h.now().UTC(),
		Database:  DatabaseStatus{Driver: h.store.Driver()},
	}

	if err := h.store.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check: database unavailable", slog.Any("error", err))
		resp.Status = "unavailable"
		WriteJSON(w, h.logger, resp, http.StatusServiceUnavailable)
		return
	}
	resp.Database.Connected = true

	// Счетчики информационные, их сбой не делает сервис нездоровым
	var err error
	if resp.Database.Users, err = h.store.CountUsers(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check: failed to count users", slog.Any("error", err))
	}
	if resp.Database.Tasks, err = h.store.CountTasks(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check: failed to count tasks", slog.Any("error", err))
	}

	WriteJSON(w, h.logger, resp, http.StatusOK)
}
