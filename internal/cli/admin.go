package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/audictl/pkg/model"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}
	cmd.AddCommand(
		newAdminStatsCmd(),
		newAdminAuditoriumsCmd(),
		newAdminBookingsCmd(),
		newAdminUsersCmd(),
	)
	return adminOnly(cmd)
}

func newAdminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := adminAPI.DashboardStats(cmd.Context())
			if err != nil {
				return apiError("dashboard stats", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Auditoriums:")
			fmt.Fprintf(out, "  Total:     %d\n", s.TotalAuditoriums)
			fmt.Fprintf(out, "  Active:    %d\n", s.ActiveAuditoriums)
			fmt.Fprintf(out, "  Inactive:  %d\n", s.InactiveAuditoriums)
			fmt.Fprintln(out, "Bookings:")
			fmt.Fprintf(out, "  Total:     %d\n", s.TotalBookings)
			fmt.Fprintf(out, "  Pending:   %d\n", s.PendingBookings)
			fmt.Fprintf(out, "  Approved:  %d\n", s.ApprovedBookings)
			fmt.Fprintf(out, "  Rejected:  %d\n", s.RejectedBookings)
			fmt.Fprintf(out, "  Cancelled: %d\n", s.CancelledBookings)
			fmt.Fprintf(out, "Most booked: %s\n", orDash(s.MostBookedAuditorium))
			return nil
		},
	}
}

func newAdminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect user accounts",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := adminAPI.ListUsers(cmd.Context())
			if err != nil {
				return apiError("list users", err)
			}
			out := cmd.OutOrStdout()
			var shown int
			for i := range users {
				u := &users[i]
				if !u.Matches(search) {
					continue
				}
				if shown == 0 {
					fmt.Fprintf(out, "%-6s  %-20s  %-32s  %s\n", "ID", "USERNAME", "EMAIL", "ROLE")
					fmt.Fprintf(out, "%-6s  %-20s  %-32s  %s\n", "--", "--------", "-----", "----")
				}
				fmt.Fprintf(out, "%-6s  %-20s  %-32s  %s\n", u.ID, u.Username, u.Email, orDash(string(u.Role)))
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, "No users found.")
			}
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "Filter by username")

	cmd.AddCommand(list)
	return cmd
}

// findAuditorium returns the auditorium with id from list.
func findAuditorium(list []model.Auditorium, id string) (*model.Auditorium, error) {
	for i := range list {
		if list[i].ID.String() == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("auditorium %s not found", id)
}
