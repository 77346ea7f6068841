package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/me/audictl/pkg/model"
)

// ErrMissingToken is returned when a login call succeeds at the HTTP level
// but the response carries no token. No session may be established from it.
var ErrMissingToken = errors.New("invalid response from server: no token")

// AuthClient calls the anonymous auth endpoints (registration, login,
// password reset). It never attaches a credential.
type AuthClient struct {
	*Client
}

// NewAuthClient creates the anonymous channel.
func NewAuthClient(baseURL string, opts ...Option) *AuthClient {
	return &AuthClient{Client: newClient(baseURL, "auth", opts...)}
}

// Register creates an account and triggers an OTP email.
func (c *AuthClient) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	return c.ack(ctx, "/register", req)
}

// VerifyOTP confirms the registration OTP.
func (c *AuthClient) VerifyOTP(ctx context.Context, req model.OTPRequest) (string, error) {
	return c.ack(ctx, "/verify-otp", req)
}

// ResendOTP asks for a new registration OTP.
func (c *AuthClient) ResendOTP(ctx context.Context, email string) (string, error) {
	return c.ack(ctx, "/resend-otp", model.EmailRequest{Email: email})
}

// Login exchanges credentials for a token. A response without a token is
// an error even when the HTTP call succeeded.
func (c *AuthClient) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: %w", ErrMissingToken)
	}
	return &resp, nil
}

// ForgotPassword sends a password-reset OTP.
func (c *AuthClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.ack(ctx, "/forgot/password", model.EmailRequest{Email: email})
}

// VerifyPasswordOTP confirms the password-reset OTP.
func (c *AuthClient) VerifyPasswordOTP(ctx context.Context, req model.OTPRequest) (string, error) {
	return c.ack(ctx, "/verify/password-otp", req)
}

// ResetPassword sets a new password after the OTP was verified.
func (c *AuthClient) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) (string, error) {
	return c.ack(ctx, "/reset/password", req)
}

func (c *AuthClient) ack(ctx context.Context, path string, body any) (string, error) {
	data, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", err
	}
	return ackMessage(data), nil
}
