package storage

import (
	"context"
	"time"

	"github.com/dibarradev/to-do/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if username or email is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves user by normalized email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UserExists reports whether username or email is already registered
	UserExists(ctx context.Context, username, email string) (bool, error)

	// DeleteUser deletes user and all of their tasks
	// No HTTP route deletes accounts; it exists for operators and tests,
	// and Verify/Refresh must keep working after a user disappears
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, userID string) error

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error

	// CountUsers returns the number of registered users
	CountUsers(ctx context.Context) (int64, error)
}

// SessionStorage persists the single active refresh token of a user
type SessionStorage interface {
	// SetRefreshToken overwrites the user's refresh token; nil revokes it
	// Returns ErrUserNotFound if user doesn't exist
	SetRefreshToken(ctx context.Context, userID string, token *string) error

	// RevokeRefreshToken clears the refresh token on whichever user holds it
	// Returns ErrTokenNotFound if no user holds the token
	RevokeRefreshToken(ctx context.Context, token string) error
}

// ResetStorage persists password reset state
type ResetStorage interface {
	// SetResetToken stores reset token hash and its absolute expiry
	// Returns ErrUserNotFound if user doesn't exist
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetUserByResetToken retrieves user holding the reset token hash
	// Expiry is not checked here
	// Returns ErrUserNotFound if no user holds the hash
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)

	// ResetPassword sets a new password hash and clears reset and refresh tokens
	// The write happens only while the user still holds tokenHash unexpired at now,
	// so a token is consumed at most once even under concurrent resets
	// Returns ErrResetTokenNotFound otherwise
	ResetPassword(ctx context.Context, userID, tokenHash, passwordHash string, now time.Time) error

	// ClearExpiredResetTokens clears reset state expired before now
	// Returns number of affected users
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
