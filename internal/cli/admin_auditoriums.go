package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/audictl/pkg/model"
)

// auditoriumFlags are the editable fields shared by add and update.
type auditoriumFlags struct {
	name      string
	location  string
	capacity  int
	active    bool
	imgURL    string
	amenities []string
	without   []string
}

func (f *auditoriumFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Auditorium name")
	fl.StringVar(&f.location, "location", "", "Location")
	fl.IntVar(&f.capacity, "capacity", 0, "Seating capacity")
	fl.BoolVar(&f.active, "active", true, "Whether users can book it")
	fl.StringVar(&f.imgURL, "img-url", "", "Image URL")
	fl.StringSliceVar(&f.amenities, "amenity", nil, "Amenity to enable (repeatable): "+strings.Join(model.AmenityKeys(), ", "))
	fl.StringSliceVar(&f.without, "no-amenity", nil, "Amenity to disable (repeatable)")
}

// apply copies the flags the user set onto a.
func (f *auditoriumFlags) apply(cmd *cobra.Command, a *model.Auditorium) error {
	fl := cmd.Flags()
	if fl.Changed("name") {
		a.Name = strings.TrimSpace(f.name)
	}
	if fl.Changed("location") {
		a.Location = strings.TrimSpace(f.location)
	}
	if fl.Changed("capacity") {
		a.Capacity = f.capacity
	}
	if fl.Changed("active") {
		a.Active = f.active
	}
	if fl.Changed("img-url") {
		a.ImgURL = f.imgURL
	}
	for _, key := range f.amenities {
		if !a.Set(key, true) {
			return fmt.Errorf("unknown amenity %q (want one of %s)", key, strings.Join(model.AmenityKeys(), ", "))
		}
	}
	for _, key := range f.without {
		if !a.Set(key, false) {
			return fmt.Errorf("unknown amenity %q (want one of %s)", key, strings.Join(model.AmenityKeys(), ", "))
		}
	}
	return nil
}

func newAdminAuditoriumsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auditoriums",
		Aliases: []string{"aud"},
		Short:   "Manage auditoriums",
	}
	cmd.AddCommand(
		newAdminAuditoriumsListCmd(),
		newAdminAuditoriumsAddCmd(),
		newAdminAuditoriumsUpdateCmd(),
		newAdminAuditoriumsDeleteCmd(),
	)
	return cmd
}

func newAdminAuditoriumsListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all auditoriums, including inactive ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := adminAPI.ListAuditoriums(cmd.Context())
			if err != nil {
				return apiError("list auditoriums", err)
			}
			list = model.SearchAuditoriums(list, search)
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No auditoriums found.")
				return nil
			}
			printAuditoriums(out, list, true)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name or location")
	return cmd
}

func newAdminAuditoriumsAddCmd() *cobra.Command {
	var f auditoriumFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an auditorium",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := model.Auditorium{Active: true}
			if err := f.apply(cmd, &a); err != nil {
				return err
			}
			if a.Name == "" || a.Location == "" || a.Capacity <= 0 {
				return errors.New("--name, --location and a positive --capacity are required")
			}
			if err := adminAPI.AddAuditorium(cmd.Context(), a); err != nil {
				return apiError("add auditorium", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Auditorium %q added.\n", a.Name)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newAdminAuditoriumsUpdateCmd() *cobra.Command {
	var f auditoriumFlags

	cmd := &cobra.Command{
		Use:   "update <auditorium_id>",
		Short: "Change an auditorium; only the given flags are modified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := adminAPI.ListAuditoriums(cmd.Context())
			if err != nil {
				return apiError("list auditoriums", err)
			}
			a, err := findAuditorium(list, args[0])
			if err != nil {
				return err
			}
			if err := f.apply(cmd, a); err != nil {
				return err
			}
			if err := adminAPI.UpdateAuditorium(cmd.Context(), a.ID, *a); err != nil {
				return apiError("update auditorium", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Auditorium %s updated.\n", a.ID)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newAdminAuditoriumsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <auditorium_id>",
		Short: "Delete an auditorium",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			out := cmd.OutOrStdout()
			if !yes {
				ok, err := newPrompter(cmd).confirm(fmt.Sprintf("Delete auditorium %s?", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Auditorium kept.")
					return nil
				}
			}
			if err := adminAPI.DeleteAuditorium(cmd.Context(), id); err != nil {
				return apiError("delete auditorium", err)
			}
			fmt.Fprintf(out, "Auditorium %s deleted.\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}
