package api

import (
	"context"
	"net/http"

	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

// LoginResult carries the issued bearer pair plus the authenticated profile.
type LoginResult struct {
	Tokens types.TokenPair
	User   types.UserProfile
}

type loginResponse struct {
	envelopeResponse
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         types.UserProfile `json:"user"`
}

// Login exchanges credentials for an access/refresh pair.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, requestSpec{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "/auth/login/",
		body: map[string]string{
			"username": username,
			"password": password,
		},
		fields: map[string]any{"username": username},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response missing access token")
	}
	return &LoginResult{
		Tokens: types.TokenPair{Access: resp.AccessToken, Refresh: resp.RefreshToken},
		User:   resp.User,
	}, nil
}

// RegisterParams is the sign-up payload.
type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type registerResponse struct {
	envelopeResponse
	User types.UserProfile `json:"user"`
}

// Register creates an account. The backend sends a verification email; the
// returned message explains the next step.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*types.UserProfile, string, error) {
	var resp registerResponse
	err := c.do(ctx, requestSpec{
		op:     "auth.register",
		method: http.MethodPost,
		path:   "/auth/register/",
		body:   params,
		fields: map[string]any{"username": params.Username},
	}, &resp)
	if err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Message, nil
}

// GoogleLogin exchanges a Google ID token for a session.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, requestSpec{
		op:     "auth.google",
		method: http.MethodPost,
		path:   "/auth/google/",
		body:   map[string]string{"id_token": idToken},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Tokens: types.TokenPair{Access: resp.AccessToken, Refresh: resp.RefreshToken},
		User:   resp.User,
	}, nil
}

type profileResponse struct {
	envelopeResponse
	User types.UserProfile `json:"user"`
}

// Profile fetches the authenticated user record.
func (c *Client) Profile(ctx context.Context) (*types.UserProfile, error) {
	var resp profileResponse
	err := c.do(ctx, requestSpec{
		op:     "auth.profile",
		method: http.MethodGet,
		path:   "/auth/profile/",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateProfile persists editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (*types.UserProfile, error) {
	var resp profileResponse
	err := c.do(ctx, requestSpec{
		op:     "auth.profile.update",
		method: http.MethodPut,
		path:   "/auth/profile/",
		body:   fields,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "auth.change_password",
		method: http.MethodPost,
		path:   "/auth/change-password/",
		body: map[string]string{
			"current_password": current,
			"new_password":     next,
		},
	}, &resp)
}

// ForgotPassword requests a reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "auth.forgot_password",
		method: http.MethodPost,
		path:   "/auth/forgot-password/",
		body:   map[string]string{"email": email},
	}, &resp)
}

// ResetPassword completes a reset flow with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "auth.reset_password",
		method: http.MethodPost,
		path:   "/auth/reset-password/",
		body: map[string]string{
			"token":        token,
			"new_password": newPassword,
		},
	}, &resp)
}

// VerifyEmail confirms the address behind the emailed token.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "auth.verify_email",
		method: http.MethodPost,
		path:   "/auth/verify-email/",
		body:   map[string]string{"token": token},
	}, &resp)
}

// ResendVerification re-sends the verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "auth.resend_verification",
		method: http.MethodPost,
		path:   "/auth/resend-verification/",
		body:   map[string]string{"email": email},
	}, &resp)
}
