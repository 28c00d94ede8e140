package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stitchforge/embroidery-studio/pkg/api"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type backend interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
	GoogleLogin(ctx context.Context, idToken string) (*api.LoginResult, error)
	Register(ctx context.Context, params api.RegisterParams) (*types.UserProfile, string, error)
	Profile(ctx context.Context) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (*types.UserProfile, error)
	ChangePassword(ctx context.Context, current, next string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
}

type tokenStore interface {
	SetTokens(ctx context.Context, pair types.TokenPair) error
	Tokens(ctx context.Context) (types.TokenPair, error)
	ClearTokens(ctx context.Context)
	ResetAdminRedirect(ctx context.Context)
}

// Service owns the sign-in lifecycle: exchanging credentials, persisting the
// bearer pair, and tearing the session down again.
type Service interface {
	SignIn(ctx context.Context, username, password string) (*types.UserProfile, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*types.UserProfile, error)
	SignUp(ctx context.Context, input SignUpInput) (*types.UserProfile, string, error)
	SignOut(ctx context.Context)
	SignedIn(ctx context.Context) bool
	Profile(ctx context.Context) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (*types.UserProfile, error)
	ChangePassword(ctx context.Context, current, next string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
}

type service struct {
	backend  backend
	store    tokenStore
	logger   *logger.Logger
	validate *validator.Validate
}

// NewService builds the auth service.
func NewService(b backend, store tokenStore, logg *logger.Logger) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if store == nil {
		return nil, fmt.Errorf("token store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		backend:  b,
		store:    store,
		logger:   logg,
		validate: validator.New(),
	}, nil
}

func (s *service) SignIn(ctx context.Context, username, password string) (*types.UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	result, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetTokens(ctx, result.Tokens); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting session tokens")
	}

	s.logger.Info(s.logger.WithUserID(ctx, result.User.Username), "signed in")
	user := result.User
	return &user, nil
}

func (s *service) SignInWithGoogle(ctx context.Context, idToken string) (*types.UserProfile, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "google id token is required")
	}
	result, err := s.backend.GoogleLogin(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetTokens(ctx, result.Tokens); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting session tokens")
	}
	user := result.User
	return &user, nil
}

// SignUpInput is the validated sign-up payload.
type SignUpInput struct {
	Username string `validate:"required,min=3,max=150"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	FullName string `validate:"max=200"`
}

func (s *service) SignUp(ctx context.Context, input SignUpInput) (*types.UserProfile, string, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sign-up details")
	}
	return s.backend.Register(ctx, api.RegisterParams{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
	})
}

// SignOut drops the local session. Purely local: the backend keeps no
// server-side session to revoke.
func (s *service) SignOut(ctx context.Context) {
	s.store.ClearTokens(ctx)
	s.store.ResetAdminRedirect(ctx)
	s.logger.Info(ctx, "signed out")
}

// SignedIn reports whether a usable access token is on hand. Expired tokens
// count as signed out so startup lands on the sign-in screen instead of a
// guaranteed 401.
func (s *service) SignedIn(ctx context.Context) bool {
	pair, err := s.store.Tokens(ctx)
	if err != nil || pair.Access == "" {
		return false
	}
	return !tokenExpired(pair.Access)
}

func (s *service) Profile(ctx context.Context) (*types.UserProfile, error) {
	return s.backend.Profile(ctx)
}

func (s *service) UpdateProfile(ctx context.Context, fields map[string]any) (*types.UserProfile, error) {
	return s.backend.UpdateProfile(ctx, fields)
}

func (s *service) ChangePassword(ctx context.Context, current, next string) error {
	if current == "" || next == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "current and new passwords are required")
	}
	return s.backend.ChangePassword(ctx, current, next)
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	return s.backend.ForgotPassword(ctx, email)
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token and new password are required")
	}
	return s.backend.ResetPassword(ctx, token, newPassword)
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification token is required")
	}
	return s.backend.VerifyEmail(ctx, token)
}

func (s *service) ResendVerification(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	return s.backend.ResendVerification(ctx, email)
}
