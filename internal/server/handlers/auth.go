package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dibarradev/to-do/internal/models"
	"github.com/dibarradev/to-do/internal/server/auth"
	"github.com/dibarradev/to-do/pkg/api"
)

// Сообщения об успехе
const (
	msgRegistered     = "user registered successfully"
	msgLoggedIn       = "login successful"
	msgValidToken     = "valid token"
	msgTokenRenewed   = "access token renewed"
	msgLoggedOut      = "logged out successfully"
	msgResetRequested = "if the email exists, you will receive instructions to reset your password"
	msgPasswordReset  = "password reset successfully"
)

// AuthService операции протокола аутентификации
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Verify(ctx context.Context, userID string) (models.PublicUser, error)
	Refresh(ctx context.Context, refreshToken string) (string, time.Time, error)
	Logout(ctx context.Context, refreshToken string)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, rawToken, password string) error
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger  *slog.Logger
	service AuthService
	cookie  CookieConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, service AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
		cookie:  cookie,
	}
}

// Register обрабатывает POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	session, err := h.service.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.sendSession(w, session, msgRegistered, http.StatusCreated)
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.sendSession(w, session, msgLoggedIn, http.StatusOK)
}

// Verify обрабатывает GET /api/auth/verify
// Вызывается за auth middleware
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		WriteErrorMessage(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.service.Verify(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	WriteJSON(w, h.logger, api.VerifyResponse{
		StatusResponse: success(msgValidToken),
		User:           toAPIUser(user),
	}, http.StatusOK)
}

// Refresh обрабатывает POST /api/auth/refresh-token
// Refresh token берется из cookie и не ротируется
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	access, _, err := h.service.Refresh(r.Context(), refreshCookieValue(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	WriteJSON(w, h.logger, api.RefreshResponse{
		StatusResponse: success(msgTokenRenewed),
		Token:          access,
	}, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout
// Всегда отвечает 200 и очищает cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), refreshCookieValue(r))
	h.cookie.clearRefreshCookie(w)
	WriteJSON(w, h.logger, success(msgLoggedOut), http.StatusOK)
}

// ForgotPassword обрабатывает POST /api/auth/forgot-password
// Ответ не раскрывает, зарегистрирован ли email
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resetToken, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	WriteJSON(w, h.logger, api.ForgotPasswordResponse{
		StatusResponse: success(msgResetRequested),
		ResetToken:     resetToken,
	}, http.StatusOK)
}

// ResetPassword обрабатывает POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	WriteJSON(w, h.logger, success(msgPasswordReset), http.StatusOK)
}

func (h *AuthHandler) sendSession(w http.ResponseWriter, session *auth.Session, message string, status int) {
	h.cookie.setRefreshCookie(w, session.RefreshToken)
	WriteJSON(w, h.logger, api.AuthResponse{
		StatusResponse: success(message),
		User:           toAPIUser(session.User),
		Token:          session.AccessToken,
	}, status)
}

func success(message string) api.StatusResponse {
	return api.StatusResponse{Status: api.StatusSuccess, Message: message}
}

func toAPIUser(u models.PublicUser) api.User {
	return api.User{ID: u.ID, Username: u.Username, Email: u.Email}
}
