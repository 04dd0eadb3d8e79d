package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dibarradev/to-do/internal/models"
	"github.com/dibarradev/to-do/internal/server/auth"
	"github.com/dibarradev/to-do/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAuthService подменяет auth.Service; nil функции возвращают нулевые значения
type fakeAuthService struct {
	register       func(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
	login          func(ctx context.Context, email, password string) (*auth.Session, error)
	verify         func(ctx context.Context, userID string) (models.PublicUser, error)
	refresh        func(ctx context.Context, refreshToken string) (string, time.Time, error)
	forgotPassword func(ctx context.Context, email string) (string, error)
	resetPassword  func(ctx context.Context, rawToken, password string) error
	loggedOut      []string
}

func (f *fakeAuthService) Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error) {
	return f.register(ctx, in)
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthService) Verify(ctx context.Context, userID string) (models.PublicUser, error) {
	return f.verify(ctx, userID)
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	return f.refresh(ctx, refreshToken)
}

func (f *fakeAuthService) Logout(_ context.Context, refreshToken string) {
	f.loggedOut = append(f.loggedOut, refreshToken)
}

func (f *fakeAuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return f.forgotPassword(ctx, email)
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, rawToken, password string) error {
	return f.resetPassword(ctx, rawToken, password)
}

func testSession() *auth.Session {
	now := time.Now()
	return &auth.Session{
		User:             models.PublicUser{ID: "user-1", Username: "alice", Email: "alice@example.com"},
		AccessToken:      "access-token",
		RefreshToken:     "refresh-token",
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshExpiresAt: now.Add(7 * 24 * time.Hour),
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withTestIdentity(req *http.Request, userID string) *http.Request {
	ctx := WithIdentity(req.Context(), Identity{UserID: userID, Username: "alice", Email: "alice@example.com"})
	return req.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, w.Code)
	resp := decodeBody[api.ErrorResponse](t, w)
	require.Equal(t, api.StatusError, resp.Status)
	require.Equal(t, message, resp.Message)
}
