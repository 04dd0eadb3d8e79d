package server

import (
	"net/http"

	"github.com/dibarradev/to-do/internal/server/handlers"
	"github.com/dibarradev/to-do/internal/server/metrics"
)

// Routes handlers и middleware, из которых собирается роутер
type Routes struct {
	Auth        *handlers.AuthHandler
	Tasks       *handlers.TaskHandler
	Health      *handlers.HealthHandler
	Metrics     *metrics.Metrics
	RequireAuth func(http.Handler) http.Handler
	RateLimit   func(http.Handler) http.Handler
}

// NewRouter регистрирует маршруты API
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	limited := func(h http.HandlerFunc) http.Handler { return rt.RateLimit(h) }
	protected := func(h http.HandlerFunc) http.Handler { return rt.RequireAuth(h) }

	mux.HandleFunc("GET /api/health", rt.Health.Health)
	mux.Handle("GET /metrics", rt.Metrics.Handler())

	// Auth
	mux.Handle("POST /api/auth/register", limited(rt.Auth.Register))
	mux.Handle("POST /api/auth/login", limited(rt.Auth.Login))
	mux.Handle("POST /api/auth/forgot-password", limited(rt.Auth.ForgotPassword))
	mux.Handle("POST /api/auth/reset-password", limited(rt.Auth.ResetPassword))
	mux.Handle("POST /api/auth/refresh-token", limited(rt.Auth.Refresh))
	mux.HandleFunc("POST /api/auth/logout", rt.Auth.Logout)
	mux.Handle("GET /api/auth/verify", protected(rt.Auth.Verify))

	// Tasks
	mux.Handle("GET /api/tasks", protected(rt.Tasks.List))
	mux.Handle("POST /api/tasks", protected(rt.Tasks.Create))
	mux.Handle("PUT /api/tasks/{id}", protected(rt.Tasks.Update))
	mux.Handle("DELETE /api/tasks/{id}", protected(rt.Tasks.Delete))
	mux.Handle("POST /api/tasks/{taskId}/subtasks", protected(rt.Tasks.AddSubtask))
	mux.Handle("PUT /api/tasks/{taskId}/subtasks/{subtaskId}", protected(rt.Tasks.UpdateSubtask))
	mux.Handle("DELETE /api/tasks/{taskId}/subtasks/{subtaskId}", protected(rt.Tasks.DeleteSubtask))

	return mux
}
