// Package fakeapi is an in-memory implementation of the auditorium booking
// REST API. It backs the client's tests and the local development server.
package fakeapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Config holds the token settings.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// DefaultConfig returns settings suitable for tests.
func DefaultConfig() Config {
	return Config{
		JWTSecret: "fakeapi-secret",
		TokenTTL:  time.Hour,
	}
}

// Server is the fake booking API.
type Server struct {
	router   chi.Router
	logger   *slog.Logger
	config   Config
	validate *validator.Validate
	data     *store
	now      func() time.Time
}

// Option configures optional Server behaviour.
type Option func(*Server)

// WithClock replaces time.Now for token issue and OTP bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server with all routes registered.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger.With("component", "fakeapi"),
		config:   cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		data:     newStore(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/verify-otp", s.handleVerifyOTP)
		r.Post("/resend-otp", s.handleResendOTP)
		r.Post("/login", s.handleLogin)
		r.Post("/forgot/password", s.handleForgotPassword)
		r.Post("/verify/password-otp", s.handleVerifyPasswordOTP)
		r.Post("/reset/password", s.handleResetPassword)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/auditoriums/getAll", s.handleUserListAuditoriums)
		r.Get("/auditorium/get/{id}", s.handleUserGetAuditorium)
		r.Post("/bookings/create", s.handleCreateBooking)
		r.Get("/bookings/getAll", s.handleUserListBookings)
		r.Put("/bookings/cancel/{id}", s.handleCancelBooking)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(requireAdmin)
		r.Get("/auditoriums/getAll", s.handleAdminListAuditoriums)
		r.Post("/auditorium/add", s.handleAddAuditorium)
		r.Put("/auditorium/update/{id}", s.handleUpdateAuditorium)
		r.Delete("/auditorium/delete/{id}", s.handleDeleteAuditorium)
		r.Get("/bookings/getAll", s.handleAdminListBookings)
		r.Put("/status/{id}", s.handleUpdateStatus)
		r.Get("/users/getAll", s.handleListUsers)
		r.Get("/dashboard/stats", s.handleStats)
	})
}
