package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every client environment variable.
const EnvPrefix = "AUDICTL"

// Session backends.
const (
	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
)

// ClientConfig holds configuration for the audictl client.
//
// Values are layered: defaults, then ~/.audictl/config.yaml, then
// AUDICTL_* environment variables, then command-line flags.
type ClientConfig struct {
	Server         string        `yaml:"server" envconfig:"SERVER"`                   // API origin (default "http://localhost:8080")
	AuthURL        string        `yaml:"auth_url" envconfig:"AUTH_URL"`               // Auth endpoints base; derived from Server when empty
	UserURL        string        `yaml:"user_url" envconfig:"USER_URL"`               // User endpoints base; derived from Server when empty
	AdminURL       string        `yaml:"admin_url" envconfig:"ADMIN_URL"`             // Admin endpoints base; derived from Server when empty
	SessionBackend string        `yaml:"session_backend" envconfig:"SESSION_BACKEND"` // file or sqlite
	SessionPath    string        `yaml:"session_path" envconfig:"SESSION_PATH"`       // Session file/database; default under Dir()
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`                 // Per-request timeout
	LogLevel       string        `yaml:"log_level" envconfig:"LOG_LEVEL"`             // debug, info, warn, error
	LogFormat      string        `yaml:"log_format" envconfig:"LOG_FORMAT"`           // text, json
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Server:         "http://localhost:8080",
		SessionBackend: SessionBackendFile,
		Timeout:        30 * time.Second,
		LogLevel:       "warn",
		LogFormat:      "text",
	}
}

// Dir returns the per-user configuration directory (~/.audictl).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".audictl"), nil
}

// LoadClientConfig builds the client configuration from defaults, the YAML
// file at path (skipped when it does not exist) and the environment. An
// empty path means Dir()/config.yaml.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path == "" {
		dir, err := Dir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks field values that would otherwise fail late.
func (c ClientConfig) Validate() error {
	switch c.SessionBackend {
	case SessionBackendFile, SessionBackendSQLite:
	default:
		return fmt.Errorf("unknown session backend %q (want %s or %s)", c.SessionBackend, SessionBackendFile, SessionBackendSQLite)
	}
	if c.Server == "" && (c.AuthURL == "" || c.UserURL == "" || c.AdminURL == "") {
		return errors.New("server URL is required")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// Endpoints returns the three API base URLs, deriving any that are unset
// from Server the way the booking API lays out its routes.
func (c ClientConfig) Endpoints() (auth, user, admin string) {
	origin := strings.TrimRight(c.Server, "/")
	auth, user, admin = c.AuthURL, c.UserURL, c.AdminURL
	if auth == "" {
		auth = origin + "/api/v1/auth"
	}
	if user == "" {
		user = origin
	}
	if admin == "" {
		admin = origin + "/admin"
	}
	return strings.TrimRight(auth, "/"), strings.TrimRight(user, "/"), strings.TrimRight(admin, "/")
}

// ResolveSessionPath returns SessionPath or the backend's default file.
func (c ClientConfig) ResolveSessionPath() (string, error) {
	if c.SessionPath != "" {
		return c.SessionPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.SessionBackend == SessionBackendSQLite {
		return filepath.Join(dir, "session.db"), nil
	}
	return filepath.Join(dir, "session.json"), nil
}

// DevServerConfig holds configuration for the local development API server.
type DevServerConfig struct {
	Addr          string        `envconfig:"ADDR" default:":8080"`
	JWTSecret     string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	AdminEmail    string        `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	Seed          bool          `envconfig:"SEED" default:"true"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string        `envconfig:"LOG_FORMAT" default:"text"`
}

// LoadDevServerConfig reads AUDICTL_DEV_* environment variables.
func LoadDevServerConfig() (DevServerConfig, error) {
	var cfg DevServerConfig
	if err := envconfig.Process(EnvPrefix+"_DEV", &cfg); err != nil {
		return cfg, err
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("jwt secret must be provided")
	}
	return cfg, nil
}
