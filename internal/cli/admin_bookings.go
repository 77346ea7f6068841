package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/audictl/pkg/model"
)

func newAdminBookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Review booking requests",
	}
	cmd.AddCommand(
		newAdminBookingsListCmd(),
		newAdminBookingTransitionCmd("approve", model.BookingStatusApproved),
		newAdminBookingTransitionCmd("reject", model.BookingStatusRejected),
		newAdminBookingTransitionCmd("cancel", model.BookingStatusCancelled),
	)
	return cmd
}

func newAdminBookingsListCmd() *cobra.Command {
	var user, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.BookingFilter{Username: user}
			if status != "" {
				st, ok := model.ParseBookingStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q (want PENDING, APPROVED, REJECTED or CANCELLED)", status)
				}
				filter.Status = st
			}

			list, err := adminAPI.ListBookings(cmd.Context())
			if err != nil {
				return apiError("list bookings", err)
			}
			list = model.FilterBookings(list, filter)

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No bookings found.")
				return nil
			}
			printBookings(out, list, true)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Filter by username (substring)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	return cmd
}

func newAdminBookingTransitionCmd(verb string, next model.BookingStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <booking_id>",
		Short: fmt.Sprintf("Mark a PENDING booking %s", strings.ToLower(string(next))),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := adminAPI.ListBookings(cmd.Context())
			if err != nil {
				return apiError("list bookings", err)
			}
			b, err := findBooking(list, args[0])
			if err != nil {
				return err
			}
			if !b.Status.CanTransitionTo(next) {
				return fmt.Errorf("booking %s is %s; only PENDING bookings can be changed", b.ID, b.Status)
			}
			if err := adminAPI.UpdateBookingStatus(cmd.Context(), b.ID, next); err != nil {
				return apiError(verb+" booking", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s %s.\n", b.ID, strings.ToLower(string(next)))
			return nil
		},
	}
}
