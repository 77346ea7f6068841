// Package account runs the login, registration and password-reset flows
// against the auth API and keeps the session store in step with them.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/me/audictl/internal/guard"
	"github.com/me/audictl/internal/logging"
	"github.com/me/audictl/internal/session"
	"github.com/me/audictl/pkg/model"
)

// ResendCooldown is the minimum wait between two OTP resends for the same
// address.
const ResendCooldown = 120 * time.Second

// AuthAPI is the subset of the auth client the flows call.
type AuthAPI interface {
	Register(ctx context.Context, req model.RegisterRequest) (string, error)
	VerifyOTP(ctx context.Context, req model.OTPRequest) (string, error)
	ResendOTP(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyPasswordOTP(ctx context.Context, req model.OTPRequest) (string, error)
	ResetPassword(ctx context.Context, req model.ResetPasswordRequest) (string, error)
}

// InputError names the form fields that failed validation. No request is
// sent when it is returned.
type InputError struct {
	Fields []string
}

func (e *InputError) Error() string {
	return "invalid input: " + strings.Join(e.Fields, ", ")
}

// CooldownError is returned by ResendOTP while the previous resend is too
// recent.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %ds before requesting another code", int(e.Remaining.Round(time.Second).Seconds()))
}

// Service wires the auth API to the session store.
type Service struct {
	auth     AuthAPI
	store    session.Store
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	lastResend map[string]time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces time.Now for the resend cooldown.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service.
func NewService(auth AuthAPI, store session.Store, opts ...Option) *Service {
	s := &Service{
		auth:       auth,
		store:      store,
		validate:   newValidator(),
		logger:     logging.Discard(),
		now:        time.Now,
		lastResend: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "account")
	return s
}

// LoginResult describes an established session.
type LoginResult struct {
	Session model.Session
	Landing guard.Destination
}

// Login exchanges credentials for a token and saves the session. A
// response without a token saves nothing. The landing is derived from the
// token's role claim, not from the role label in the response body.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	req := model.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := s.check(req); err != nil {
		return nil, err
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	sess := model.Session{
		Token:    resp.Token,
		Role:     resp.Role,
		Username: resp.Username,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	landing := guard.LandingForToken(resp.Token)
	s.logger.Info("logged in", "username", resp.Username, "landing", string(landing))
	return &LoginResult{Session: sess, Landing: landing}, nil
}

// Logout clears the session. It does not contact the server.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// Register creates an account; the server emails an OTP.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, error) {
	req := model.RegisterRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := s.check(req); err != nil {
		return "", err
	}
	msg, err := s.auth.Register(ctx, req)
	if err != nil {
		return "", err
	}
	s.markResent(req.Email)
	return msg, nil
}

// VerifyOTP confirms a registration OTP.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	req := model.OTPRequest{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(otp)}
	if err := s.check(req); err != nil {
		return "", err
	}
	return s.auth.VerifyOTP(ctx, req)
}

// ResendOTP asks for a new registration OTP. Within ResendCooldown of the
// previous send to the same address it returns a *CooldownError without
// calling the server.
func (s *Service) ResendOTP(ctx context.Context, email string) (string, error) {
	req := model.EmailRequest{Email: strings.TrimSpace(email)}
	if err := s.check(req); err != nil {
		return "", err
	}
	if remaining := s.cooldown(req.Email); remaining > 0 {
		return "", &CooldownError{Remaining: remaining}
	}
	msg, err := s.auth.ResendOTP(ctx, req.Email)
	if err != nil {
		return "", err
	}
	s.markResent(req.Email)
	return msg, nil
}

// ForgotPassword sends a password-reset OTP.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	req := model.EmailRequest{Email: strings.TrimSpace(email)}
	if err := s.check(req); err != nil {
		return "", err
	}
	return s.auth.ForgotPassword(ctx, req.Email)
}

// VerifyPasswordOTP confirms the password-reset OTP.
func (s *Service) VerifyPasswordOTP(ctx context.Context, email, otp string) (string, error) {
	req := model.OTPRequest{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(otp)}
	if err := s.check(req); err != nil {
		return "", err
	}
	return s.auth.VerifyPasswordOTP(ctx, req)
}

// ResetPassword sets a new password after the OTP was verified.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) (string, error) {
	req := model.ResetPasswordRequest{Email: strings.TrimSpace(email), NewPassword: newPassword}
	if err := s.check(req); err != nil {
		return "", err
	}
	return s.auth.ResetPassword(ctx, req)
}

func (s *Service) cooldown(email string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastResend[strings.ToLower(email)]
	if !ok {
		return 0
	}
	return ResendCooldown - s.now().Sub(last)
}

func (s *Service) markResent(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResend[strings.ToLower(email)] = s.now()
}

// check validates a request struct and reports the failing JSON field names.
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}
	ie := &InputError{}
	for _, fe := range verrs {
		ie.Fields = append(ie.Fields, fe.Field())
	}
	return ie
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
