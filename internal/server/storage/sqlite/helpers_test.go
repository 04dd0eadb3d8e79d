package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dibarradev/to-do/internal/models"
)

// Helper functions

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func newTestUser() *models.User {
	userID := uuid.New().String()
	now := time.Now().UTC()
	return &models.User{
		ID:           userID,
		Username:     "testuser_" + userID[:8],
		Email:        "user_" + userID[:8] + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage) *models.User {
	t.Helper()
	user := newTestUser()
	require.NoError(t, s.CreateUser(ctx, user))
	return user
}

func strPtr(s string) *string {
	return &s
}
