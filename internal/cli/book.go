package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/audictl/internal/booking"
	"github.com/me/audictl/pkg/model"
)

func newBookCmd() *cobra.Command {
	var start, purpose string
	var yes bool

	cmd := &cobra.Command{
		Use:   "book <auditorium_id>",
		Short: "Request a two-hour booking",
		Long: `Request a booking of an auditorium. The booking lasts two hours from
the start time; the end is derived. The request is shown for confirmation
before it is sent. New bookings are PENDING until an administrator acts.

Start accepts "2006-01-02 15:04", "2006-01-02T15:04", RFC 3339, or phrases
such as "tomorrow at 10am".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			composer := booking.NewComposer(model.ID(args[0]), userAPI,
				booking.WithLogger(logger),
				booking.WithObserver(func(from, to booking.State) {
					logger.Debug("composer", "from", from.String(), "to", to.String())
				}),
			)

			startAt, err := booking.ParseStart(start, time.Now())
			if err != nil {
				return err
			}
			if err := composer.SetStart(startAt); err != nil {
				return err
			}
			if err := composer.SetPurpose(purpose); err != nil {
				return err
			}

			draft, err := composer.Review()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Booking request:")
			fmt.Fprintf(out, "  Auditorium: %s\n", draft.AuditoriumID)
			fmt.Fprintf(out, "  Start:      %s\n", formatTime(draft.Start))
			fmt.Fprintf(out, "  End:        %s\n", formatTime(draft.End))
			fmt.Fprintf(out, "  Purpose:    %s\n", draft.Purpose)

			if yes {
				if _, err := composer.Confirm(cmd.Context()); err != nil {
					return apiError("booking failed", err)
				}
			} else if err := confirmBooking(cmd, composer); err != nil {
				if errors.Is(err, errBookingNotSent) {
					fmt.Fprintln(out, "Booking not sent.")
					return nil
				}
				return err
			}
			fmt.Fprintln(out, "Booking request sent; it is PENDING until an administrator reviews it.")
			fmt.Fprintln(out, "Track it with: audictl bookings list")
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start time")
	cmd.Flags().StringVar(&purpose, "purpose", "", "Purpose of the booking")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Send without asking for confirmation")
	return userArea(cmd)
}

// errBookingNotSent means the user declined before anything was sent.
var errBookingNotSent = errors.New("booking not sent")

// confirmBooking asks before sending the reviewed draft. A failed send keeps
// the draft and asks whether to try again; declining returns the composer to
// Composing.
func confirmBooking(cmd *cobra.Command, composer *booking.Composer) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd)
	question := "Send this booking request?"
	for {
		ok, err := p.confirm(question)
		if err != nil {
			return err
		}
		if !ok {
			if cerr := composer.Cancel(); cerr != nil {
				return cerr
			}
			if last := composer.LastError(); last != nil {
				return apiError("booking failed", last)
			}
			return errBookingNotSent
		}
		if _, err := composer.Confirm(cmd.Context()); err != nil {
			last := composer.LastError()
			if last == nil {
				return err
			}
			fmt.Fprintf(out, "Booking failed: %v\n", last)
			question = "Try again?"
			continue
		}
		return nil
	}
}
