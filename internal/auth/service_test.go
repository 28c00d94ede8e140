package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchforge/embroidery-studio/pkg/api"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type stubBackend struct {
	loginResult *api.LoginResult
	loginErr    error
	loginCalls  int
}

func (s *stubBackend) Login(ctx context.Context, username, password string) (*api.LoginResult, error) {
	s.loginCalls++
	return s.loginResult, s.loginErr
}

func (s *stubBackend) GoogleLogin(ctx context.Context, idToken string) (*api.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubBackend) Register(ctx context.Context, params api.RegisterParams) (*types.UserProfile, string, error) {
	return &types.UserProfile{Username: params.Username, Email: params.Email}, "check your email", nil
}

func (s *stubBackend) Profile(ctx context.Context) (*types.UserProfile, error) {
	return &types.UserProfile{Username: "stitcher"}, nil
}

func (s *stubBackend) UpdateProfile(ctx context.Context, fields map[string]any) (*types.UserProfile, error) {
	return &types.UserProfile{Username: "stitcher"}, nil
}

func (s *stubBackend) ChangePassword(ctx context.Context, current, next string) error { return nil }
func (s *stubBackend) ForgotPassword(ctx context.Context, email string) error         { return nil }
func (s *stubBackend) ResetPassword(ctx context.Context, token, pw string) error      { return nil }
func (s *stubBackend) VerifyEmail(ctx context.Context, token string) error            { return nil }
func (s *stubBackend) ResendVerification(ctx context.Context, email string) error     { return nil }

type stubStore struct {
	pair          types.TokenPair
	setErr        error
	cleared       bool
	redirectReset bool
}

func (s *stubStore) SetTokens(ctx context.Context, pair types.TokenPair) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.pair = pair
	return nil
}

func (s *stubStore) Tokens(ctx context.Context) (types.TokenPair, error) { return s.pair, nil }

func (s *stubStore) ClearTokens(ctx context.Context) {
	s.pair = types.TokenPair{}
	s.cleared = true
}

func (s *stubStore) ResetAdminRedirect(ctx context.Context) { s.redirectReset = true }

func newTestService(t *testing.T, b *stubBackend, store *stubStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "auth-test", Output: io.Discard})
	svc, err := NewService(b, store, logg)
	require.NoError(t, err)
	return svc
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestSignInStoresTokens(t *testing.T) {
	backend := &stubBackend{loginResult: &api.LoginResult{
		Tokens: types.TokenPair{Access: "acc", Refresh: "ref"},
		User:   types.UserProfile{Username: "stitcher"},
	}}
	store := &stubStore{}
	svc := newTestService(t, backend, store)

	user, err := svc.SignIn(context.Background(), "stitcher", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "stitcher", user.Username)
	assert.Equal(t, "acc", store.pair.Access)
	assert.Equal(t, "ref", store.pair.Refresh)
}

func TestSignInRejectsBlankCredentials(t *testing.T) {
	backend := &stubBackend{}
	svc := newTestService(t, backend, &stubStore{})

	_, err := svc.SignIn(context.Background(), "  ", "pw")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, backend.loginCalls, "no network call for invalid input")
}

func TestSignInPropagatesBackendError(t *testing.T) {
	backend := &stubBackend{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	store := &stubStore{}
	svc := newTestService(t, backend, store)

	_, err := svc.SignIn(context.Background(), "stitcher", "wrong")
	require.Error(t, err)
	assert.Empty(t, store.pair.Access)
}

func TestSignOutClearsSession(t *testing.T) {
	store := &stubStore{pair: types.TokenPair{Access: "acc"}}
	svc := newTestService(t, &stubBackend{}, store)

	svc.SignOut(context.Background())
	assert.True(t, store.cleared)
	assert.True(t, store.redirectReset)
	assert.Empty(t, store.pair.Access)
}

func TestSignedIn(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(t, &stubBackend{}, store)
	ctx := context.Background()

	assert.False(t, svc.SignedIn(ctx), "no token")

	store.pair = types.TokenPair{Access: signedToken(t, time.Now().Add(time.Hour))}
	assert.True(t, svc.SignedIn(ctx), "live token")

	store.pair = types.TokenPair{Access: signedToken(t, time.Now().Add(-time.Hour))}
	assert.False(t, svc.SignedIn(ctx), "expired token")

	store.pair = types.TokenPair{Access: "not-a-jwt"}
	assert.True(t, svc.SignedIn(ctx), "unreadable token left to the backend")
}

func TestSignUpValidation(t *testing.T) {
	svc := newTestService(t, &stubBackend{}, &stubStore{})
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, SignUpInput{Username: "ab", Email: "x@example.com", Password: "longenough"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "short username")

	_, _, err = svc.SignUp(ctx, SignUpInput{Username: "stitcher", Email: "not-an-email", Password: "longenough"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "bad email")

	_, _, err = svc.SignUp(ctx, SignUpInput{Username: "stitcher", Email: "x@example.com", Password: "short"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "short password")

	user, message, err := svc.SignUp(ctx, SignUpInput{Username: "stitcher", Email: "x@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "stitcher", user.Username)
	assert.NotEmpty(t, message)
}
