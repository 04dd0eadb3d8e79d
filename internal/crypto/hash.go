package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ResetTokenBytes длина reset token в байтах (256 бит)
const ResetTokenBytes = 32

// GenerateResetToken создает случайный reset token
// Возвращает raw token (отдается пользователю) и его SHA256 хеш (хранится в БД)
func GenerateResetToken() (token, hash string, err error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	token = hex.EncodeToString(buf)
	return token, HashResetToken(token), nil
}

// HashResetToken хеширует reset token с использованием SHA256
// Детерминированный хеш позволяет искать пользователя по токену,
// поэтому сравнение выполняет SQL по равенству хешей
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

