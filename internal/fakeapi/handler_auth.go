package fakeapi

import (
	"errors"
	"net/http"

	"github.com/me/audictl/pkg/model"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.data.createAccount(req.Username, req.Email, req.Password, model.RoleUser, false); err != nil {
		if errors.Is(err, errConflict) {
			respondError(w, http.StatusConflict, "username or email already registered")
			return
		}
		s.internalError(w, r, err)
		return
	}
	s.sendOTP(w, r, req.Email, otpRegister, "OTP sent to your email")
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req model.OTPRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.data.checkOTP(req.Email, req.OTP, otpRegister); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondMessage(w, http.StatusOK, "account verified, you can log in now")
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req model.EmailRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sendOTP(w, r, req.Email, otpRegister, "OTP resent to your email")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	acct, err := s.data.checkPassword(req.Email, req.Password)
	switch {
	case errors.Is(err, errNotVerified):
		respondError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	tok, err := s.issueToken(acct)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, model.LoginResponse{
		Token:    tok,
		Role:     string(acct.user.Role),
		Username: acct.user.Username,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.EmailRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sendOTP(w, r, req.Email, otpReset, "password reset OTP sent to your email")
}

func (s *Server) handleVerifyPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req model.OTPRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.data.checkOTP(req.Email, req.OTP, otpReset); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondMessage(w, http.StatusOK, "OTP verified")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.data.consumeReset(req.Email) {
		respondError(w, http.StatusBadRequest, "verify the reset OTP first")
		return
	}
	if err := s.data.setPassword(req.Email, req.NewPassword); err != nil {
		s.internalError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "password reset successful")
}

// sendOTP issues a code for email. Delivery is a debug log line; tests read
// the code through PendingOTP.
func (s *Server) sendOTP(w http.ResponseWriter, r *http.Request, email, purpose, msg string) {
	code, err := s.data.issueOTP(email, purpose)
	switch {
	case errors.Is(err, errNotFound):
		respondError(w, http.StatusNotFound, "no account for this email")
		return
	case errors.Is(err, errConflict):
		respondError(w, http.StatusBadRequest, "account already verified")
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	s.logger.Debug("otp issued", "email", email, "purpose", purpose, "code", code)
	respondMessage(w, http.StatusOK, msg)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFromContext(r.Context()))
	respondError(w, http.StatusInternalServerError, "internal server error")
}
