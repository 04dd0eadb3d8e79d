package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dibarradev/to-do/internal/models"
)

var testUser = &models.User{
	ID:       "5f0d7c4e-0000-4000-8000-000000000001",
	Username: "alice",
	Email:    "alice@example.com",
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestIssuer(t *testing.T, clock *fakeClock) *Issuer {
	t.Helper()
	i, err := NewIssuer(Config{
		AccessSecret:  []byte("access-secret-for-tests-0123456789"),
		RefreshSecret: []byte("refresh-secret-for-tests-012345678"),
	}, WithClock(clock.Now))
	require.NoError(t, err)
	return i
}

func TestNewIssuer_RequiresSecrets(t *testing.T) {
	_, err := NewIssuer(Config{AccessSecret: []byte("a")})
	assert.Error(t, err)

	_, err = NewIssuer(Config{RefreshSecret: []byte("r")})
	assert.Error(t, err)
}

func TestIssueAccess_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(t, clock)

	raw, expiresAt, err := issuer.IssueAccess(testUser)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(15*time.Minute), expiresAt)

	claims, err := issuer.VerifyAccess(raw)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.UserID)
	assert.Equal(t, testUser.Username, claims.Username)
	assert.Equal(t, testUser.Email, claims.Email)
}

func TestVerifyAccess_ExpiryWindow(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	issuer := newTestIssuer(t, clock)

	raw, _, err := issuer.IssueAccess(testUser)
	require.NoError(t, err)

	clock.now = issuedAt.Add(14 * time.Minute)
	_, err = issuer.VerifyAccess(raw)
	require.NoError(t, err, "токен должен быть валиден через 14 минут")

	clock.now = issuedAt.Add(16 * time.Minute)
	_, err = issuer.VerifyAccess(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestIssueRefresh_RoundTrip(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	issuer := newTestIssuer(t, clock)

	raw, expiresAt, err := issuer.IssueRefresh(testUser)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(7*24*time.Hour), expiresAt)

	claims, err := issuer.VerifyRefresh(raw)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.UserID)

	clock.now = issuedAt.Add(7*24*time.Hour + time.Second)
	_, err = issuer.VerifyRefresh(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssueRefresh_UniquePerCall(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestIssuer(t, clock)

	first, _, err := issuer.IssueRefresh(testUser)
	require.NoError(t, err)
	second, _, err := issuer.IssueRefresh(testUser)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify_TokensAreNotInterchangeable(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestIssuer(t, clock)

	access, _, err := issuer.IssueAccess(testUser)
	require.NoError(t, err)
	refresh, _, err := issuer.IssueRefresh(testUser)
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_SameSecretStillChecksType(t *testing.T) {
	secret := []byte("shared-secret-shared-secret-0123")
	issuer, err := NewIssuer(Config{AccessSecret: secret, RefreshSecret: secret})
	require.NoError(t, err)

	refresh, _, err := issuer.IssueRefresh(testUser)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccess_Invalid(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestIssuer(t, clock)

	valid, _, err := issuer.IssueAccess(testUser)
	require.NoError(t, err)

	other, err := NewIssuer(Config{
		AccessSecret:  []byte("another-access-secret-0123456789ab"),
		RefreshSecret: []byte("another-refresh-secret-0123456789a"),
	})
	require.NoError(t, err)
	forged, _, err := other.IssueAccess(testUser)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		UserID: testUser.ID,
		Type:   typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong secret", token: forged},
		{name: "tampered payload", token: tampered},
		{name: "alg none", token: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.NotErrorIs(t, err, ErrTokenExpired)
		})
	}
}

func TestVerifyAccess_ForgedAndExpiredIsInvalid(t *testing.T) {
	issuedAt := time.Now()
	other, err := NewIssuer(Config{
		AccessSecret:  []byte("another-access-secret-0123456789ab"),
		RefreshSecret: []byte("another-refresh-secret-0123456789a"),
	}, WithClock(func() time.Time { return issuedAt.Add(-time.Hour) }))
	require.NoError(t, err)

	forged, _, err := other.IssueAccess(testUser)
	require.NoError(t, err)

	issuer := newTestIssuer(t, &fakeClock{now: issuedAt})
	_, err = issuer.VerifyAccess(forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
