package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dibarradev/to-do/internal/client/api"
	"github.com/dibarradev/to-do/internal/client/storage"
	pkgapi "github.com/dibarradev/to-do/pkg/api"
)

type memStore struct {
	session *storage.Session
	saveErr error
}

func (m *memStore) SaveSession(_ context.Context, session *storage.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *session
	m.session = &cp
	return nil
}

func (m *memStore) GetSession(_ context.Context) (*storage.Session, error) {
	if m.session == nil {
		return nil, storage.ErrSessionNotFound
	}
	cp := *m.session
	return &cp, nil
}

func (m *memStore) DeleteSession(_ context.Context) error {
	m.session = nil
	return nil
}

type fakeAPI struct {
	loginFn   func(req pkgapi.LoginRequest) (*api.Session, error)
	verifyFn  func(accessToken string) (*pkgapi.User, error)
	refreshFn func(refreshToken string) (string, error)
	logoutErr error

	registered []pkgapi.RegisterRequest
	loggedOut  []string
	reset      []pkgapi.ResetPasswordRequest
}

func (f *fakeAPI) BaseURL() string { return "http://todo.test" }

func (f *fakeAPI) Register(_ context.Context, req pkgapi.RegisterRequest) (*api.Session, error) {
	f.registered = append(f.registered, req)
	return &api.Session{
		User:         pkgapi.User{ID: "user-1", Username: req.Username, Email: req.Email},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}, nil
}

func (f *fakeAPI) Login(_ context.Context, req pkgapi.LoginRequest) (*api.Session, error) {
	return f.loginFn(req)
}

func (f *fakeAPI) Verify(_ context.Context, accessToken string) (*pkgapi.User, error) {
	return f.verifyFn(accessToken)
}

func (f *fakeAPI) Refresh(_ context.Context, refreshToken string) (string, error) {
	return f.refreshFn(refreshToken)
}

func (f *fakeAPI) Logout(_ context.Context, refreshToken string) error {
	f.loggedOut = append(f.loggedOut, refreshToken)
	return f.logoutErr
}

func (f *fakeAPI) ForgotPassword(_ context.Context, email string) (*pkgapi.ForgotPasswordResponse, error) {
	return &pkgapi.ForgotPasswordResponse{ResetToken: "reset-for-" + email}, nil
}

func (f *fakeAPI) ResetPassword(_ context.Context, req pkgapi.ResetPasswordRequest) error {
	f.reset = append(f.reset, req)
	return nil
}

var (
	errExpired = &api.APIError{StatusCode: http.StatusUnauthorized, Message: "token expired"}
	errInvalid = &api.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid token"}
)

func newTestService(f *fakeAPI, store *memStore) *Service {
	s := NewService(f, store)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func loggedIn() *memStore {
	return &memStore{session: &storage.Session{
		UserID:       "user-1",
		Username:     "alice",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}}
}

func TestService_Register(t *testing.T) {
	f := &fakeAPI{}
	store := &memStore{}
	s := newTestService(f, store)

	session, err := s.Register(context.Background(), "  alice ", "Alice@Example.com", "secret123")
	require.NoError(t, err)

	require.Len(t, f.registered, 1)
	assert.Equal(t, "alice", f.registered[0].Username)
	assert.Equal(t, "alice@example.com", f.registered[0].Email)

	assert.Equal(t, "http://todo.test", session.ServerURL)
	assert.Equal(t, "refresh-1", store.session.RefreshToken)
	assert.Equal(t, s.now(), store.session.SavedAt)
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "short username", username: "al", email: "alice@example.com", password: "secret123"},
		{name: "bad email", username: "alice", email: "alice", password: "secret123"},
		{name: "short password", username: "alice", email: "alice@example.com", password: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{}
			s := newTestService(f, &memStore{})

			_, err := s.Register(context.Background(), tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.Empty(t, f.registered)
		})
	}
}

func TestService_Login_ServerError(t *testing.T) {
	serverErr := &api.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
	f := &fakeAPI{loginFn: func(pkgapi.LoginRequest) (*api.Session, error) { return nil, serverErr }}
	store := &memStore{}

	_, err := newTestService(f, store).Login(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, serverErr)
	assert.Nil(t, store.session)
}

func TestService_Session_NotLoggedIn(t *testing.T) {
	_, err := newTestService(&fakeAPI{}, &memStore{}).Session(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestService_WithAccess_RefreshesOnce(t *testing.T) {
	store := loggedIn()
	f := &fakeAPI{refreshFn: func(refreshToken string) (string, error) {
		assert.Equal(t, "refresh-1", refreshToken)
		return "access-2", nil
	}}
	s := newTestService(f, store)

	var seen []string
	err := s.WithAccess(context.Background(), func(_ context.Context, accessToken string) error {
		seen = append(seen, accessToken)
		if accessToken == "access-1" {
			return errExpired
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"access-1", "access-2"}, seen)
	assert.Equal(t, "access-2", store.session.AccessToken)
}

func TestService_WithAccess_NoRetryOnOtherErrors(t *testing.T) {
	f := &fakeAPI{refreshFn: func(string) (string, error) {
		t.Fatal("refresh must not be called")
		return "", nil
	}}
	s := newTestService(f, loggedIn())

	calls := 0
	err := s.WithAccess(context.Background(), func(context.Context, string) error {
		calls++
		return errInvalid
	})
	require.ErrorIs(t, err, errInvalid)
	assert.Equal(t, 1, calls)
}

func TestService_WithAccess_RetryOnlyOnce(t *testing.T) {
	refreshes := 0
	f := &fakeAPI{refreshFn: func(string) (string, error) {
		refreshes++
		return "access-2", nil
	}}
	s := newTestService(f, loggedIn())

	calls := 0
	err := s.WithAccess(context.Background(), func(context.Context, string) error {
		calls++
		return errExpired
	})
	assert.True(t, api.IsTokenExpired(err))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, refreshes)
}

func TestService_WithAccess_RefreshRejected(t *testing.T) {
	f := &fakeAPI{refreshFn: func(string) (string, error) { return "", errInvalid }}
	s := newTestService(f, loggedIn())

	err := s.WithAccess(context.Background(), func(context.Context, string) error { return errExpired })
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, err.Error(), "please login again")
}

func TestService_Whoami(t *testing.T) {
	f := &fakeAPI{verifyFn: func(accessToken string) (*pkgapi.User, error) {
		assert.Equal(t, "access-1", accessToken)
		return &pkgapi.User{ID: "user-1", Username: "alice"}, nil
	}}

	user, err := newTestService(f, loggedIn()).Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestService_Logout(t *testing.T) {
	t.Run("revokes and deletes", func(t *testing.T) {
		f := &fakeAPI{}
		store := loggedIn()

		require.NoError(t, newTestService(f, store).Logout(context.Background()))
		assert.Equal(t, []string{"refresh-1"}, f.loggedOut)
		assert.Nil(t, store.session)
	})

	t.Run("server down still deletes", func(t *testing.T) {
		f := &fakeAPI{logoutErr: errors.New("connection refused")}
		store := loggedIn()

		err := newTestService(f, store).Logout(context.Background())
		require.Error(t, err)
		assert.Nil(t, store.session)
	})

	t.Run("not logged in", func(t *testing.T) {
		err := newTestService(&fakeAPI{}, &memStore{}).Logout(context.Background())
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})
}

func TestService_PasswordReset(t *testing.T) {
	f := &fakeAPI{}
	s := newTestService(f, &memStore{})
	ctx := context.Background()

	resp, err := s.ForgotPassword(ctx, " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "reset-for-alice@example.com", resp.ResetToken)

	require.Error(t, s.ResetPassword(ctx, "", "newpass123"))
	require.Error(t, s.ResetPassword(ctx, "reset-1", "123"))
	require.NoError(t, s.ResetPassword(ctx, "reset-1", "newpass123"))
	assert.Equal(t, []pkgapi.ResetPasswordRequest{{Token: "reset-1", Password: "newpass123"}}, f.reset)
}
