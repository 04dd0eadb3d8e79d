package postgres

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/dibarradev/to-do/internal/models"
	"github.com/dibarradev/to-do/internal/server/storage"
)

// SetRefreshToken overwrites the user's refresh token; nil revokes it
func (s *Storage) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2`,
		token, userID,
	)
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").With("id", userID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", userID).Wrap(storage.ErrUserNotFound)
	}
	return nil
}

// RevokeRefreshToken clears the refresh token on whichever user holds it
func (s *Storage) RevokeRefreshToken(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET refresh_token = NULL, updated_at = now() WHERE refresh_token = $1`,
		token,
	)
	if err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(storage.ErrTokenNotFound)
	}
	return nil
}

// SetResetToken stores reset token hash and expiry
func (s *Storage) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = now()
		WHERE id = $3
	`, tokenHash, expiresAt, userID)
	if err != nil {
		return oops.Code("RESET_UPDATE_FAILED").With("id", userID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", userID).Wrap(storage.ErrUserNotFound)
	}
	return nil
}

// GetUserByResetToken retrieves user holding the reset token hash
func (s *Storage) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return s.getUser(ctx, "reset_token_hash", tokenHash)
}

// ResetPassword sets a new password hash and clears reset and refresh tokens
// Conditional on the token so that concurrent resets consume it once
func (s *Storage) ResetPassword(ctx context.Context, userID, tokenHash, passwordHash string, now time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    refresh_token = NULL,
		    updated_at = now()
		WHERE id = $2 AND reset_token_hash = $3 AND reset_token_expires_at > $4
	`, passwordHash, userID, tokenHash, now)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").With("id", userID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("RESET_TOKEN_NOT_FOUND").With("id", userID).Wrap(storage.ErrResetTokenNotFound)
	}
	return nil
}

// ClearExpiredResetTokens clears reset state expired before now
func (s *Storage) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= $1
	`, now)
	if err != nil {
		return 0, oops.Code("RESET_CLEANUP_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}
