package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dibarradev/to-do/internal/client/api"
	"github.com/dibarradev/to-do/internal/client/storage"
	"github.com/dibarradev/to-do/internal/validation"
	pkgapi "github.com/dibarradev/to-do/pkg/api"
)

// ErrNotLoggedIn локальная сессия отсутствует
var ErrNotLoggedIn = errors.New("not logged in, run `todo login` first")

// SessionAPI серверные операции аутентификации
type SessionAPI interface {
	BaseURL() string
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*api.Session, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*api.Session, error)
	Verify(ctx context.Context, accessToken string) (*pkgapi.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) (*pkgapi.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, req pkgapi.ResetPasswordRequest) error
}

// Service предоставляет функции авторизации и хранит сессию между запусками
type Service struct {
	api   SessionAPI
	store storage.SessionStorage
	now   func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient SessionAPI, store storage.SessionStorage) *Service {
	return &Service{
		api:   apiClient,
		store: store,
		now:   time.Now,
	}
}

// Register регистрирует нового пользователя и сохраняет сессию
func (s *Service) Register(ctx context.Context, username, email, password string) (*storage.Session, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	remote, err := s.api.Register(ctx, pkgapi.RegisterRequest{
		Username: validation.NormalizeUsername(username),
		Email:    validation.NormalizeEmail(email),
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, remote)
}

// Login выполняет вход и сохраняет сессию
func (s *Service) Login(ctx context.Context, email, password string) (*storage.Session, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	remote, err := s.api.Login(ctx, pkgapi.LoginRequest{
		Email:    validation.NormalizeEmail(email),
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, remote)
}

// Session возвращает сохраненную сессию
func (s *Service) Session(ctx context.Context) (*storage.Session, error) {
	session, err := s.store.GetSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// Whoami проверяет access токен на сервере
func (s *Service) Whoami(ctx context.Context) (*pkgapi.User, error) {
	var user *pkgapi.User
	err := s.WithAccess(ctx, func(ctx context.Context, accessToken string) error {
		var err error
		user, err = s.api.Verify(ctx, accessToken)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Refresh получает новый access токен и сохраняет его
func (s *Service) Refresh(ctx context.Context) (*storage.Session, error) {
	session, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout отзывает refresh токен и удаляет локальную сессию
// Локальная сессия удаляется даже если сервер недоступен
func (s *Service) Logout(ctx context.Context) error {
	session, err := s.Session(ctx)
	if err != nil {
		return err
	}

	serverErr := s.api.Logout(ctx, session.RefreshToken)

	if err := s.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if serverErr != nil {
		return fmt.Errorf("local session removed, server logout failed: %w", serverErr)
	}
	return nil
}

// ForgotPassword запрашивает сброс пароля
func (s *Service) ForgotPassword(ctx context.Context, email string) (*pkgapi.ForgotPasswordResponse, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	return s.api.ForgotPassword(ctx, validation.NormalizeEmail(email))
}

// ResetPassword устанавливает новый пароль по токену сброса
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return errors.New("reset token is required")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	return s.api.ResetPassword(ctx, pkgapi.ResetPasswordRequest{Token: token, Password: password})
}

// WithAccess вызывает fn с текущим access токеном
// Если сервер ответил "token expired", токен обновляется и fn вызывается повторно один раз
func (s *Service) WithAccess(ctx context.Context, fn func(ctx context.Context, accessToken string) error) error {
	session, err := s.Session(ctx)
	if err != nil {
		return err
	}

	err = fn(ctx, session.AccessToken)
	if !api.IsTokenExpired(err) {
		return err
	}

	if err := s.refresh(ctx, session); err != nil {
		return err
	}
	return fn(ctx, session.AccessToken)
}

func (s *Service) refresh(ctx context.Context, session *storage.Session) error {
	token, err := s.api.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if api.IsUnauthorized(err) {
			return fmt.Errorf("session expired, please login again: %w", err)
		}
		return err
	}

	session.AccessToken = token
	session.SavedAt = s.now().UTC()
	if err := s.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Service) persist(ctx context.Context, remote *api.Session) (*storage.Session, error) {
	session := &storage.Session{
		SavedAt:      s.now().UTC(),
		ServerURL:    s.api.BaseURL(),
		UserID:       remote.User.ID,
		Username:     remote.User.Username,
		Email:        remote.User.Email,
		AccessToken:  remote.AccessToken,
		RefreshToken: remote.RefreshToken,
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}
