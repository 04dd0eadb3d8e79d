package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/dibarradev/to-do/internal/models"
	"github.com/dibarradev/to-do/internal/server/storage"
)

// SetRefreshToken overwrites the user's refresh token; nil revokes it
func (s *Storage) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, token, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	return checkAffected(result, storage.ErrUserNotFound)
}

// RevokeRefreshToken clears the refresh token on whichever user holds it
func (s *Storage) RevokeRefreshToken(ctx context.Context, token string) error {
	query := `UPDATE users SET refresh_token = NULL, updated_at = ? WHERE refresh_token = ?`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return checkAffected(result, storage.ErrTokenNotFound)
}

// SetResetToken stores reset token hash and its absolute expiry
func (s *Storage) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, tokenHash, expiresAt.UnixMilli(), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return checkAffected(result, storage.ErrUserNotFound)
}

// GetUserByResetToken retrieves user holding the reset token hash
func (s *Storage) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = ?`
	return s.getUser(ctx, query, tokenHash)
}

// ResetPassword sets a new password hash and clears reset and refresh tokens
// Conditional on the token so that concurrent resets consume it once
func (s *Storage) ResetPassword(ctx context.Context, userID, tokenHash, passwordHash string, now time.Time) error {
	query := `
		UPDATE users
		SET password_hash = ?,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    refresh_token = NULL,
		    updated_at = ?
		WHERE id = ? AND reset_token_hash = ? AND reset_token_expires_at > ?
	`

	result, err := s.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), userID, tokenHash, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return checkAffected(result, storage.ErrResetTokenNotFound)
}

// ClearExpiredResetTokens clears reset state expired before now
func (s *Storage) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= ?
	`

	result, err := s.db.ExecContext(ctx, query, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
