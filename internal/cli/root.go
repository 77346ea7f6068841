package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/audictl/internal/account"
	"github.com/me/audictl/internal/api"
	"github.com/me/audictl/internal/config"
	"github.com/me/audictl/internal/guard"
	"github.com/me/audictl/internal/logging"
	"github.com/me/audictl/internal/session"
)

var (
	flagServer         string
	flagConfig         string
	flagDebug          bool
	flagLogLevel       string
	flagLogFormat      string
	flagSessionBackend string
	flagSessionPath    string

	logger   *slog.Logger
	store    session.Store
	gate     *guard.Gate
	authAPI  *api.AuthClient
	userAPI  *api.UserClient
	adminAPI *api.AdminClient
	accounts *account.Service
)

// Execute runs the audictl command line and releases the session store
// whether or not the command succeeded.
func Execute(ctx context.Context) error {
	return execute(ctx, NewRootCmd())
}

func execute(ctx context.Context, root *cobra.Command) error {
	defer closeSession()
	return root.ExecuteContext(ctx)
}

// closeSession closes the session store opened by setup, if any.
// Cobra skips post-run hooks when a command fails, so this runs from
// execute instead.
func closeSession() {
	c, ok := store.(io.Closer)
	store = nil
	if !ok {
		return
	}
	if err := c.Close(); err != nil && logger != nil {
		logger.Warn("close session store", "error", err)
	}
}

// NewRootCmd creates the root cobra command for the audictl CLI.
func NewRootCmd() *cobra.Command {
	defaults := config.DefaultClientConfig()

	root := &cobra.Command{
		Use:   "audictl",
		Short: "audictl: auditorium booking client",
		Long:  "audictl browses auditoriums, books time slots and, for administrators, manages venues and approves bookings.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(cmd); err != nil {
				return err
			}
			return checkGuard(cmd)
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagServer, "server", defaults.Server, "Booking API origin (or AUDICTL_SERVER env)")
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.audictl/config.yaml)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
	pf.StringVar(&flagSessionBackend, "session-backend", defaults.SessionBackend, "Session storage (file, sqlite)")
	pf.StringVar(&flagSessionPath, "session-path", "", "Session file or database (default under ~/.audictl)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newRegisterCmd(),
		newPasswordCmd(),
		newAuditoriumsCmd(),
		newBookCmd(),
		newBookingsCmd(),
		newAdminCmd(),
	)

	return root
}

// setup layers flags over the loaded configuration and builds the
// session store, API clients and guard gate.
func setup(cmd *cobra.Command) error {
	cfg, err := config.LoadClientConfig(flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = flagServer
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flags.Changed("session-backend") {
		cfg.SessionBackend = flagSessionBackend
	}
	if flags.Changed("session-path") {
		cfg.SessionPath = flagSessionPath
	}
	if flagDebug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())

	path, err := cfg.ResolveSessionPath()
	if err != nil {
		return err
	}
	store, err = session.Open(cfg.SessionBackend, path, logger)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	opts := []api.Option{api.WithTimeout(cfg.Timeout), api.WithLogger(logger)}
	tokens := session.TokenSource(store, logger)
	authURL, userURL, adminURL := cfg.Endpoints()
	authAPI = api.NewAuthClient(authURL, opts...)
	userAPI = api.NewUserClient(userURL, tokens, opts...)
	adminAPI = api.NewAdminClient(adminURL, tokens, opts...)

	accounts = account.NewService(authAPI, store, account.WithLogger(logger))
	gate = guard.NewGate(store, logger)

	logger.Debug("configured", "server", cfg.Server, "session_backend", cfg.SessionBackend, "session_path", path)
	return nil
}
