// Package auth реализует протокол аутентификации: регистрация, вход,
// проверка и обновление токенов, выход и сброс пароля.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dibarradev/to-do/internal/crypto"
	"github.com/dibarradev/to-do/internal/models"
	"github.com/dibarradev/to-do/internal/server/apperr"
	"github.com/dibarradev/to-do/internal/server/metrics"
	"github.com/dibarradev/to-do/internal/server/notify"
	"github.com/dibarradev/to-do/internal/server/storage"
	"github.com/dibarradev/to-do/internal/server/token"
	"github.com/dibarradev/to-do/internal/validation"
)

// DefaultResetTTL время жизни reset token
const DefaultResetTTL = time.Hour

// Сообщения клиенту
const (
	MsgAllFieldsRequired   = "all fields are required"
	MsgAlreadyRegistered   = "username or email is already registered"
	MsgCredentialsRequired = "email and password are required"
	MsgInvalidCredentials  = "invalid credentials"
	MsgUserNotFound        = "user not found"
	MsgRefreshMissing      = "refresh token not provided"
	MsgRefreshInvalid      = "invalid or expired refresh token"
	MsgRefreshRevoked      = "refresh token revoked or user not found"
	MsgEmailRequired       = "email is required"
	MsgResetFieldsRequired = "token and password are required"
	MsgResetInvalid        = "invalid or expired token"
)

// Store хранилище, которое нужно сервису
type Store interface {
	storage.UserStorage
	storage.SessionStorage
	storage.ResetStorage
}

// TokenIssuer выпускает токены
type TokenIssuer interface {
	IssueAccess(user *models.User) (string, time.Time, error)
	IssueRefresh(user *models.User) (string, time.Time, error)
	VerifyRefresh(raw string) (*token.RefreshClaims, error)
}

// Options дополнительные настройки сервиса
type Options struct {
	Now      func() time.Time
	NewID    func() string
	Metrics  *metrics.Metrics
	ResetTTL time.Duration
	// ExposeResetToken возвращать raw reset token в ответе (только не production)
	ExposeResetToken bool
}

// Service оркестрирует хранилище, hasher и issuer
type Service struct {
	logger    *slog.Logger
	store     Store
	hasher    crypto.PasswordHasher
	tokens    TokenIssuer
	notifier  notify.ResetNotifier
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
	dummyHash string
	dummyOnce sync.Once
	resetTTL  time.Duration
	expose    bool
}

// NewService создает сервис
func NewService(
	logger *slog.Logger,
	store Store,
	hasher crypto.PasswordHasher,
	tokens TokenIssuer,
	notifier notify.ResetNotifier,
	opts Options,
) *Service {
	s := &Service{
		logger:   logger,
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		metrics:  opts.Metrics,
		now:      opts.Now,
		newID:    opts.NewID,
		resetTTL: opts.ResetTTL,
		expose:   opts.ExposeResetToken,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.resetTTL <= 0 {
		s.resetTTL = DefaultResetTTL
	}
	return s
}

// RegisterInput данные регистрации
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Session результат успешной регистрации или входа
type Session struct {
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	User             models.PublicUser
	AccessToken      string
	RefreshToken     string
}

// Register создает пользователя и открывает сессию
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	username := validation.NormalizeUsername(in.Username)
	email := validation.NormalizeEmail(in.Email)

	if username == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation(MsgAllFieldsRequired)
	}
	for _, err := range []error{
		validation.ValidateUsername(username),
		validation.ValidateEmail(email),
		validation.ValidatePassword(in.Password),
	} {
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
	}

	exists, err := s.store.UserExists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		s.metrics.AuthEvent("register", metrics.OutcomeFailure)
		return nil, apperr.Conflict(MsgAlreadyRegistered)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           s.newID(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	user.RefreshToken = &session.RefreshToken

	// Пользователь и его refresh token сохраняются одной записью
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			s.metrics.AuthEvent("register", metrics.OutcomeFailure)
			return nil, apperr.Conflict(MsgAlreadyRegistered).WithCause(err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.AuthEvent("register", metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return session, nil
}

// Login проверяет email и пароль
// Неизвестный email и неверный пароль неразличимы для клиента
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation(MsgCredentialsRequired)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		// Выравниваем время ответа с веткой существующего пользователя
		s.burnHash(password)
		s.metrics.AuthEvent("login", metrics.OutcomeFailure)
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		s.metrics.AuthEvent("login", metrics.OutcomeFailure)
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	// Новый refresh token перезаписывает прежний: активна одна сессия
	if err := s.store.SetRefreshToken(ctx, user.ID, &session.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		// Не критично
		s.logger.WarnContext(ctx, "failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	s.metrics.AuthEvent("login", metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return session, nil
}

// Verify возвращает профиль владельца access token
func (s *Service) Verify(ctx context.Context, userID string) (models.PublicUser, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.PublicUser{}, apperr.Unauthorized(MsgUserNotFound)
		}
		return models.PublicUser{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user.Public(), nil
}

// Refresh выпускает новый access token по refresh token
// Refresh token при этом не ротируется
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken == "" {
		return "", time.Time{}, apperr.Unauthorized(MsgRefreshMissing)
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.metrics.AuthEvent("refresh", metrics.OutcomeFailure)
		return "", time.Time{}, apperr.Unauthorized(MsgRefreshInvalid).WithCause(err)
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return "", time.Time{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !sameToken(user.RefreshToken, refreshToken) {
		s.metrics.AuthEvent("refresh", metrics.OutcomeFailure)
		return "", time.Time{}, apperr.Unauthorized(MsgRefreshRevoked)
	}

	access, expiresAt, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	s.metrics.AuthEvent("refresh", metrics.OutcomeSuccess)
	return access, expiresAt, nil
}

// Logout отзывает refresh token. Никогда не возвращает ошибку клиенту.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	err := s.store.RevokeRefreshToken(ctx, refreshToken)
	switch {
	case err == nil:
		s.metrics.AuthEvent("logout", metrics.OutcomeSuccess)
	case errors.Is(err, storage.ErrTokenNotFound):
		// Токен уже отозван или перезаписан новым входом
	default:
		s.logger.ErrorContext(ctx, "failed to revoke refresh token", slog.Any("error", err))
	}
}

// ForgotPassword выдает reset token, если email зарегистрирован
// Возвращает raw token только когда ExposeResetToken включен
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return "", apperr.Validation(MsgEmailRequired)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.logger.DebugContext(ctx, "password reset for unknown email")
			return "", nil
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	raw, hash, err := crypto.GenerateResetToken()
	if err != nil {
		return "", err
	}

	expiresAt := s.now().Add(s.resetTTL).UTC()
	if err := s.store.SetResetToken(ctx, user.ID, hash, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	s.metrics.ResetIssued()

	if err := s.notifier.SendPasswordReset(ctx, user.Email, raw, expiresAt); err != nil {
		s.logger.ErrorContext(ctx, "failed to dispatch password reset",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	if !s.expose {
		return "", nil
	}
	return raw, nil
}

// ResetPassword устанавливает новый пароль по reset token
// Токен одноразовый, все сессии пользователя завершаются
func (s *Service) ResetPassword(ctx context.Context, rawToken, password string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" || password == "" {
		return apperr.Validation(MsgResetFieldsRequired)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return apperr.Validation(err.Error())
	}

	tokenHash := crypto.HashResetToken(rawToken)
	user, err := s.store.GetUserByResetToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.metrics.AuthEvent("reset", metrics.OutcomeFailure)
			return apperr.Validation(MsgResetInvalid)
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}
	if !user.HasActiveReset(s.now()) {
		s.metrics.AuthEvent("reset", metrics.OutcomeFailure)
		return apperr.Validation(MsgResetInvalid)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Параллельный сброс мог израсходовать токен, пока считался bcrypt
	if err := s.store.ResetPassword(ctx, user.ID, tokenHash, passwordHash, s.now()); err != nil {
		if errors.Is(err, storage.ErrResetTokenNotFound) {
			s.metrics.AuthEvent("reset", metrics.OutcomeFailure)
			return apperr.Validation(MsgResetInvalid)
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.metrics.AuthEvent("reset", metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "password reset", slog.String("user_id", user.ID))
	return nil
}

// SweepExpiredResets очищает истекшие reset token
func (s *Service) SweepExpiredResets(ctx context.Context) (int64, error) {
	return s.store.ClearExpiredResetTokens(ctx, s.now())
}

func (s *Service) issueSession(user *models.User) (*Session, error) {
	access, accessExp, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &Session{
		User:             user.Public(),
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// burnHash тратит столько же времени, сколько проверка настоящего пароля
func (s *Service) burnHash(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password-for-timing")
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func sameToken(stored *string, presented string) bool {
	if stored == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(presented)) == 1
}
