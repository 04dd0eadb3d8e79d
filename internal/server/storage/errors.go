package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that username or email is already taken
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that no user holds the refresh token
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrResetTokenNotFound indicates that the reset token is unknown, expired or already used
	ErrResetTokenNotFound = errors.New("reset token not found")

	// ErrTaskNotFound indicates that task was not found for the owner
	ErrTaskNotFound = errors.New("task not found")
)
