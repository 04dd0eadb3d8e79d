package storage

import (
	"context"
	"time"
)

// SessionStorage хранит сессию пользователя между запусками клиента
type SessionStorage interface {
	// SaveSession сохраняет сессию, заменяя предыдущую
	SaveSession(ctx context.Context, session *Session) error

	// GetSession возвращает сохраненную сессию
	// Returns ErrSessionNotFound if user is not logged in
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession удаляет сессию (logout)
	// Отсутствие сессии не считается ошибкой
	DeleteSession(ctx context.Context) error
}

// Session данные входа
// RefreshToken это значение HttpOnly cookie, которое браузер хранил бы сам
type Session struct {
	SavedAt      time.Time `json:"saved_at"`
	ServerURL    string    `json:"server_url"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}
