package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset a forgotten password",
		Long: `Reset a forgotten password in three steps:

  audictl password forgot --email you@example.com
  audictl password verify --email you@example.com --otp 123456
  audictl password reset  --email you@example.com`,
	}
	cmd.AddCommand(newPasswordForgotCmd(), newPasswordVerifyCmd(), newPasswordResetCmd())
	return anonymousOnly(cmd)
}

func newPasswordForgotCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot",
		Short: "Email a password-reset OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newPrompter(cmd).fill(&email, "Email: "); err != nil {
				return err
			}
			msg, err := accounts.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("forgot password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	return cmd
}

func newPasswordVerifyCmd() *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the password-reset OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&email, "Email: "); err != nil {
				return err
			}
			if err := p.fill(&otp, "OTP: "); err != nil {
				return err
			}
			msg, err := accounts.VerifyPasswordOTP(cmd.Context(), email, otp)
			if err != nil {
				return fmt.Errorf("verify otp: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&otp, "otp", "", "Code from the email (prompted if omitted)")
	return cmd
}

func newPasswordResetCmd() *cobra.Command {
	var email, newPassword string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password after verifying the OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&email, "Email: "); err != nil {
				return err
			}
			if err := p.fillSecret(&newPassword, "New password: "); err != nil {
				return err
			}
			msg, err := accounts.ResetPassword(cmd.Context(), email, newPassword)
			if err != nil {
				return fmt.Errorf("reset password: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, msg)
			fmt.Fprintln(out, "Next: audictl login")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "New password (prompted if omitted)")
	return cmd
}
