package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/audictl/pkg/model"
)

func newAuditoriumsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auditoriums",
		Aliases: []string{"aud"},
		Short:   "Browse auditoriums",
	}
	cmd.AddCommand(newAuditoriumsListCmd(), newAuditoriumsShowCmd())
	return userArea(cmd)
}

func newAuditoriumsListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List auditoriums",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := userAPI.ListAuditoriums(cmd.Context())
			if err != nil {
				return apiError("list auditoriums", err)
			}
			list = model.SearchAuditoriums(list, search)

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No auditoriums found.")
				return nil
			}
			printAuditoriums(out, list, false)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name or location")
	return cmd
}

func newAuditoriumsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <auditorium_id>",
		Short: "Show an auditorium and its amenities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := userAPI.GetAuditorium(cmd.Context(), model.ID(args[0]))
			if err != nil {
				return apiError("get auditorium", err)
			}
			out := cmd.OutOrStdout()
			printAuditorium(out, a)
			fmt.Fprintf(out, "\nBook it with: audictl book %s --start \"YYYY-MM-DD HH:MM\" --purpose \"...\"\n", a.ID)
			return nil
		},
	}
}
