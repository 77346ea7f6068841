// Package booking composes booking requests: it derives the end time from
// the start, validates the draft, and runs the compose → confirm → submit
// sequence so that each explicit confirmation issues exactly one
// create-booking call.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/me/audictl/internal/logging"
	"github.com/me/audictl/pkg/model"
)

// State is a composer state.
type State int

const (
	// Composing is the initial state; start and purpose are editable.
	Composing State = iota
	// Confirming shows the draft for explicit acknowledgement.
	Confirming
	// Submitting means a create-booking call is in flight.
	Submitting
	// Succeeded and Failed are reported to observers on the way out of
	// Submitting; the composer then settles in Composing or Confirming.
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Composing:
		return "composing"
	case Confirming:
		return "confirming"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrSubmitInFlight is returned by Confirm while a submission is running.
	ErrSubmitInFlight = errors.New("booking submission already in progress")
	// ErrNotConfirming is returned by Confirm or Cancel outside Confirming.
	ErrNotConfirming = errors.New("no booking awaiting confirmation")
	// ErrNotComposing is returned by edits outside Composing.
	ErrNotComposing = errors.New("booking draft is not editable now")
)

// Creator issues the create-booking call.
type Creator interface {
	CreateBooking(ctx context.Context, req model.BookingRequest) error
}

// Observer is told about every state change.
type Observer func(from, to State)

// Composer runs the booking flow for one auditorium.
type Composer struct {
	mu       sync.Mutex
	state    State
	draft    Draft
	lastErr  error
	creator  Creator
	validate *validator.Validate
	observer Observer
	logger   *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithObserver registers fn for state changes. fn runs with the composer
// unlocked and must not block.
func WithObserver(fn Observer) Option {
	return func(c *Composer) {
		c.observer = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logger
	}
}

// NewComposer starts a flow in Composing for auditoriumID.
func NewComposer(auditoriumID model.ID, creator Creator, opts ...Option) *Composer {
	c := &Composer{
		state:    Composing,
		draft:    Draft{AuditoriumID: auditoriumID},
		creator:  creator,
		validate: newValidator(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "composer", "auditorium_id", auditoriumID.String())
	return c
}

// State returns the current state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the current draft.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Summary returns the draft awaiting acknowledgement. ok is false outside
// Confirming.
func (c *Composer) Summary() (d Draft, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Confirming {
		return Draft{}, false
	}
	return c.draft, true
}

// LastError returns the error of the most recent failed submission, or nil.
func (c *Composer) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SetStart sets the start time and recomputes the end time. A zero start
// clears both.
func (c *Composer) SetStart(start time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Composing {
		return ErrNotComposing
	}
	c.draft.Start = start
	c.draft.End = EndFor(start)
	return nil
}

// SetPurpose sets the purpose label. Surrounding whitespace is dropped.
func (c *Composer) SetPurpose(purpose string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Composing {
		return ErrNotComposing
	}
	c.draft.Purpose = strings.TrimSpace(purpose)
	return nil
}

// Review moves to Confirming if the draft is complete. Otherwise it returns
// a *ValidationError and the state is unchanged.
func (c *Composer) Review() (Draft, error) {
	c.mu.Lock()
	if c.state != Composing {
		c.mu.Unlock()
		return Draft{}, ErrNotComposing
	}
	if err := validateDraft(c.validate, c.draft); err != nil {
		c.mu.Unlock()
		return Draft{}, err
	}
	d := c.draft
	c.state = Confirming
	c.lastErr = nil
	c.mu.Unlock()

	c.notify(Composing, Confirming)
	return d, nil
}

// Cancel returns from Confirming to Composing, keeping the draft.
func (c *Composer) Cancel() error {
	c.mu.Lock()
	if c.state != Confirming {
		c.mu.Unlock()
		return ErrNotConfirming
	}
	c.state = Composing
	c.mu.Unlock()

	c.notify(Confirming, Composing)
	return nil
}

// Confirm submits the draft shown in Confirming. It issues exactly one
// create-booking call; a Confirm arriving while that call is in flight
// returns ErrSubmitInFlight without calling the server.
//
// On success the draft's start, end and purpose are cleared and the
// composer returns to Composing; the submitted draft is returned. On
// failure it returns to Confirming with the draft intact.
func (c *Composer) Confirm(ctx context.Context) (Draft, error) {
	c.mu.Lock()
	switch c.state {
	case Submitting:
		c.mu.Unlock()
		return Draft{}, ErrSubmitInFlight
	case Confirming:
	default:
		c.mu.Unlock()
		return Draft{}, ErrNotConfirming
	}
	d := c.draft
	c.state = Submitting
	c.mu.Unlock()
	c.notify(Confirming, Submitting)

	c.logger.Debug("submitting booking", "start", d.Start, "end", d.End)
	err := c.creator.CreateBooking(ctx, d.Request())

	c.mu.Lock()
	if err != nil {
		c.state = Confirming
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Debug("booking submission failed", "error", err)
		c.notify(Submitting, Failed)
		c.notify(Failed, Confirming)
		return d, fmt.Errorf("create booking: %w", err)
	}
	c.state = Composing
	c.lastErr = nil
	c.draft = Draft{AuditoriumID: d.AuditoriumID}
	c.mu.Unlock()

	c.logger.Info("booking submitted", "start", d.Start)
	c.notify(Submitting, Succeeded)
	c.notify(Succeeded, Composing)
	return d, nil
}

func (c *Composer) notify(from, to State) {
	if c.observer != nil {
		c.observer(from, to)
	}
}
