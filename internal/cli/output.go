package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/me/audictl/pkg/model"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printAuditoriums(w io.Writer, list []model.Auditorium, withActive bool) {
	if withActive {
		fmt.Fprintf(w, "%-6s  %-28s  %-28s  %8s  %s\n", "ID", "NAME", "LOCATION", "CAPACITY", "ACTIVE")
		fmt.Fprintf(w, "%-6s  %-28s  %-28s  %8s  %s\n", "--", "----", "--------", "--------", "------")
	} else {
		fmt.Fprintf(w, "%-6s  %-28s  %-28s  %8s\n", "ID", "NAME", "LOCATION", "CAPACITY")
		fmt.Fprintf(w, "%-6s  %-28s  %-28s  %8s\n", "--", "----", "--------", "--------")
	}
	for _, a := range list {
		if withActive {
			fmt.Fprintf(w, "%-6s  %-28s  %-28s  %8d  %s\n", a.ID, a.Name, a.Location, a.Capacity, yesNo(a.Active))
		} else {
			fmt.Fprintf(w, "%-6s  %-28s  %-28s  %8d\n", a.ID, a.Name, a.Location, a.Capacity)
		}
	}
}

func printAuditorium(w io.Writer, a *model.Auditorium) {
	fmt.Fprintf(w, "Auditorium: %s\n", a.Name)
	fmt.Fprintf(w, "  ID:       %s\n", a.ID)
	fmt.Fprintf(w, "  Location: %s\n", a.Location)
	fmt.Fprintf(w, "  Capacity: %d\n", a.Capacity)
	fmt.Fprintf(w, "  Active:   %s\n", yesNo(a.Active))
	if a.ImgURL != "" {
		fmt.Fprintf(w, "  Image:    %s\n", a.ImgURL)
	}
	var have []string
	for _, am := range a.List() {
		if am.Available {
			have = append(have, am.Label)
		}
	}
	if len(have) == 0 {
		fmt.Fprintln(w, "  Amenities: none")
		return
	}
	fmt.Fprintf(w, "  Amenities: %s\n", strings.Join(have, ", "))
}

func printBookings(w io.Writer, list []model.Booking, withUser bool) {
	if withUser {
		fmt.Fprintf(w, "%-6s  %-16s  %-24s  %-16s  %-16s  %-10s  %s\n", "ID", "USER", "AUDITORIUM", "START", "END", "STATUS", "PURPOSE")
		fmt.Fprintf(w, "%-6s  %-16s  %-24s  %-16s  %-16s  %-10s  %s\n", "--", "----", "----------", "-----", "---", "------", "-------")
	} else {
		fmt.Fprintf(w, "%-6s  %-24s  %-16s  %-16s  %-10s  %s\n", "ID", "AUDITORIUM", "START", "END", "STATUS", "PURPOSE")
		fmt.Fprintf(w, "%-6s  %-24s  %-16s  %-16s  %-10s  %s\n", "--", "----------", "-----", "---", "------", "-------")
	}
	for i := range list {
		b := &list[i]
		if withUser {
			fmt.Fprintf(w, "%-6s  %-16s  %-24s  %-16s  %-16s  %-10s  %s\n",
				b.ID, orDash(b.Username()), orDash(b.AuditoriumName()), formatTime(b.StartTime), formatTime(b.EndTime), b.Status, b.Purpose)
		} else {
			fmt.Fprintf(w, "%-6s  %-24s  %-16s  %-16s  %-10s  %s\n",
				b.ID, orDash(b.AuditoriumName()), formatTime(b.StartTime), formatTime(b.EndTime), b.Status, b.Purpose)
		}
	}
}

// findBooking returns the booking with id from list.
func findBooking(list []model.Booking, id string) (*model.Booking, error) {
	for i := range list {
		if list[i].ID.String() == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("booking %s not found", id)
}
