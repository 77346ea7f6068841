package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Show and cancel your bookings",
	}
	cmd.AddCommand(newBookingsListCmd(), newBookingsCancelCmd())
	return userArea(cmd)
}

func newBookingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := userAPI.ListBookings(cmd.Context())
			if err != nil {
				return apiError("list bookings", err)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No bookings found.")
				return nil
			}
			printBookings(out, list, false)
			return nil
		},
	}
}

func newBookingsCancelCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel <booking_id>",
		Short: "Cancel a PENDING booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := userAPI.ListBookings(cmd.Context())
			if err != nil {
				return apiError("list bookings", err)
			}
			b, err := findBooking(list, args[0])
			if err != nil {
				return err
			}
			if !b.Status.CanCancel() {
				return fmt.Errorf("booking %s is %s; only PENDING bookings can be cancelled", b.ID, b.Status)
			}

			out := cmd.OutOrStdout()
			if !yes {
				ok, err := newPrompter(cmd).confirm(fmt.Sprintf("Cancel booking %s (%s, %s)?", b.ID, orDash(b.AuditoriumName()), formatTime(b.StartTime)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Booking kept.")
					return nil
				}
			}

			if err := userAPI.CancelBooking(cmd.Context(), b.ID); err != nil {
				return apiError("cancel booking", err)
			}
			fmt.Fprintf(out, "Booking %s cancelled.\n", b.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Cancel without asking for confirmation")
	return cmd
}
