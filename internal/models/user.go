package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt         time.Time  `json:"created_at"`           // время создания
	UpdatedAt         time.Time  `json:"updated_at"`           // время последнего обновления
	RefreshToken      *string    `json:"-"`                    // единственный активный refresh token
	ResetTokenHash    *string    `json:"-"`                    // SHA256 hex хеш reset token
	ResetTokenExpires *time.Time `json:"-"`                    // абсолютное время истечения reset token
	LastLogin         *time.Time `json:"last_login,omitempty"` // время последнего входа
	ID                string     `json:"id"`                   // UUID пользователя
	Username          string     `json:"username"`             // уникальный username
	Email             string     `json:"email"`                // уникальный email в нижнем регистре
	PasswordHash      string     `json:"-"`                    // bcrypt хеш пароля
}

// PublicUser публичный профиль пользователя, без секретов
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public возвращает профиль, который можно отдать клиенту
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// HasActiveReset проверяет, что у пользователя есть неистекший reset token
func (u *User) HasActiveReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpires != nil && now.Before(*u.ResetTokenExpires)
}
