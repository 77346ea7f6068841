package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// redacted replaces the value of any attribute that can carry a credential.
const redacted = "[REDACTED]"

// secretKeys are attribute keys whose values never reach the log output.
// Keys are compared case-insensitively.
var secretKeys = map[string]bool{
	"token":         true,
	"password":      true,
	"newpassword":   true,
	"otp":           true,
	"authorization": true,
}

// NewLogger creates a configured slog.Logger writing to stderr, leaving
// stdout to command output.
//
// level: slog level (DEBUG, INFO, WARN, ERROR)
// format: "text" (human-readable) or "json" (structured)
func NewLogger(level slog.Level, format string) *slog.Logger {
	return NewLoggerWithWriter(level, format, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to the given writer.
// Credential-bearing attributes are redacted.
func NewLoggerWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used as the default when
// a component is constructed without one.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsSecretKey reports whether values logged under key are redacted.
func IsSecretKey(key string) bool {
	return secretKeys[strings.ToLower(key)]
}

func redact(groups []string, a slog.Attr) slog.Attr {
	if IsSecretKey(a.Key) && a.Value.Kind() != slog.KindGroup {
		if a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, redacted)
	}
	return a
}
