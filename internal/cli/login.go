package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/audictl/internal/api"
	"github.com/me/audictl/internal/claims"
	"github.com/me/audictl/internal/guard"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the booking service",
		Long:  "Exchange email and password for a session token. The session is stored until logout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&email, "Email: "); err != nil {
				return err
			}
			if err := p.fillSecret(&password, "Password: "); err != nil {
				return err
			}

			res, err := accounts.Login(cmd.Context(), email, password)
			if errors.Is(err, api.ErrMissingToken) {
				return errors.New("login failed: invalid response from server")
			}
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s.\n", res.Session.Username)
			fmt.Fprintf(out, "Next: %s\n", LandingCommand(res.Landing))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	return anonymousOnly(cmd)
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := accounts.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sess, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}
			if !sess.HasToken() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			role, err := claims.Role(sess.Token)
			if err != nil {
				fmt.Fprintf(out, "Session token is unreadable; run `%s`.\n", LandingCommand(guard.Login))
				return nil
			}
			fmt.Fprintf(out, "User: %s\n", sess.Username)
			fmt.Fprintf(out, "Role: %s\n", role)
			fmt.Fprintf(out, "Home: %s\n", LandingCommand(guard.Landing(role)))
			return nil
		},
	}
}
