package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost фиксированная стоимость bcrypt (10 раундов)
const DefaultBcryptCost = bcrypt.DefaultCost

// ErrEmptyPassword пароль не может быть пустым
var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher хеширует и проверяет пароли
type PasswordHasher interface {
	// Hash возвращает соленый хеш пароля
	Hash(password string) (string, error)
	// Verify возвращает false при несовпадении пароля,
	// ошибку только если сохраненный хеш поврежден
	Verify(password, hash string) (bool, error)
}

// BcryptHasher реализация PasswordHasher на bcrypt
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher создает hasher; cost вне допустимого диапазона заменяется на DefaultBcryptCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash хеширует пароль, соль генерируется bcrypt на каждый вызов
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify сравнивает пароль с bcrypt хешем
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("stored password hash is corrupted: %w", err)
	}
}
