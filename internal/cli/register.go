package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/audictl/internal/account"
)

func newRegisterCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. The server emails a one-time password (OTP);
enter it at the prompt, or type "resend" for a new one. Codes can also be
verified later with "audictl register verify".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&username, "Username: "); err != nil {
				return err
			}
			if err := p.fill(&email, "Email: "); err != nil {
				return err
			}
			if err := p.fillSecret(&password, "Password: "); err != nil {
				return err
			}

			msg, err := accounts.Register(cmd.Context(), username, email, password)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, msg)

			for {
				code, err := p.ask(`OTP (or "resend"): `)
				if errors.Is(err, errNoInput) {
					fmt.Fprintf(out, "Verify later with: audictl register verify --email %s --otp <code>\n", email)
					return nil
				}
				if err != nil {
					return err
				}

				if strings.EqualFold(code, "resend") {
					msg, err := accounts.ResendOTP(cmd.Context(), email)
					var cooldown *account.CooldownError
					switch {
					case errors.As(err, &cooldown):
						fmt.Fprintln(out, cooldown.Error())
					case err != nil:
						return fmt.Errorf("resend otp: %w", err)
					default:
						fmt.Fprintln(out, msg)
					}
					continue
				}

				msg, err := accounts.VerifyOTP(cmd.Context(), email, code)
				if err != nil {
					fmt.Fprintf(out, "Verification failed: %v\n", err)
					continue
				}
				fmt.Fprintln(out, msg)
				fmt.Fprintln(out, "Next: audictl login")
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (prompted if omitted)")
	cmd.Flags().StringVar(&email, "email", "", "Email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")

	cmd.AddCommand(newRegisterVerifyCmd(), newRegisterResendCmd())
	return anonymousOnly(cmd)
}

func newRegisterVerifyCmd() *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a registration OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := accounts.VerifyOTP(cmd.Context(), email, otp)
			if err != nil {
				return fmt.Errorf("verify otp: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Registered email")
	cmd.Flags().StringVar(&otp, "otp", "", "Code from the email")
	return cmd
}

func newRegisterResendCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend",
		Short: "Send a new registration OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := accounts.ResendOTP(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("resend otp: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Registered email")
	return cmd
}
