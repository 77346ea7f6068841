package model

import "strings"

// Role is the role label issued by the server. The set is open; only the
// administrator marker has meaning to the client.
type Role string

const (
	// RoleAdmin is the administrator marker carried in token claims.
	RoleAdmin Role = "ADMIN"
	// RoleUser is a standard account.
	RoleUser Role = "USER"
)

// IsAdmin reports whether r is the administrator marker. The comparison is
// exact because it gates admin-only commands.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is an account as listed by the admin API.
type User struct {
	ID       ID     `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role,omitempty"`
}

// Matches reports whether the username contains q, ignoring case.
func (u *User) Matches(q string) bool {
	if u == nil {
		return q == ""
	}
	return strings.Contains(strings.ToLower(u.Username), strings.ToLower(q))
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body returned by POST /login.
type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OTPRequest verifies a one-time password sent by email.
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// EmailRequest carries only an email address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /reset/password.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// MessageResponse is the generic acknowledgement returned by auth endpoints.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
}
