package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/audictl/pkg/model"
)

// fakeCreator counts calls and can block until released.
type fakeCreator struct {
	calls   atomic.Int32
	err     error
	gate    chan struct{}
	entered chan struct{}
	mu      sync.Mutex
	last    model.BookingRequest
}

func (f *fakeCreator) CreateBooking(ctx context.Context, req model.BookingRequest) error {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.err
}

var june1 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func TestSetStart_DerivesEnd(t *testing.T) {
	c := NewComposer("7", &fakeCreator{})

	for _, start := range []time.Time{
		june1,
		time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 1, 15, 0, 0, time.FixedZone("X", -5*3600)),
	} {
		require.NoError(t, c.SetStart(start))
		d := c.Draft()
		assert.Equal(t, start, d.Start)
		assert.Equal(t, start.Add(2*time.Hour), d.End)
	}

	require.NoError(t, c.SetStart(time.Time{}))
	d := c.Draft()
	assert.True(t, d.Start.IsZero())
	assert.True(t, d.End.IsZero(), "clearing start clears end")
}

func TestReview_RejectsIncompleteDraft(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		purpose string
		missing []string
	}{
		{"empty", time.Time{}, "", []string{"start", "end", "purpose"}},
		{"no purpose", june1, "", []string{"purpose"}},
		{"blank purpose", june1, "   ", []string{"purpose"}},
		{"no start", time.Time{}, "Workshop", []string{"start", "end"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCreator{}
			c := NewComposer("7", fc)
			require.NoError(t, c.SetStart(tt.start))
			require.NoError(t, c.SetPurpose(tt.purpose))

			_, err := c.Review()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.missing, ve.Fields)
			assert.Equal(t, Composing, c.State(), "no state change")

			_, err = c.Confirm(context.Background())
			assert.ErrorIs(t, err, ErrNotConfirming)
			assert.Zero(t, fc.calls.Load(), "no network call")
		})
	}
}

func TestReview_RequiresAuditorium(t *testing.T) {
	c := NewComposer("", &fakeCreator{})
	require.NoError(t, c.SetStart(june1))
	require.NoError(t, c.SetPurpose("Workshop"))
	_, err := c.Review()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"auditorium"}, ve.Fields)
}

func TestScenario_WorkshopSucceeds(t *testing.T) {
	fc := &fakeCreator{}
	var transitions []string
	c := NewComposer("7", fc, WithObserver(func(from, to State) {
		transitions = append(transitions, from.String()+">"+to.String())
	}))

	start, err := ParseStart("2024-06-01T10:00", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, c.SetStart(start))
	require.NoError(t, c.SetPurpose("Workshop"))
	assert.Equal(t, "2024-06-01T12:00", c.Draft().End.Format("2006-01-02T15:04"))

	shown, err := c.Review()
	require.NoError(t, err)
	assert.Equal(t, Confirming, c.State())
	assert.Equal(t, "Workshop", shown.Purpose)
	summary, ok := c.Summary()
	require.True(t, ok)
	assert.Equal(t, shown, summary)

	submitted, err := c.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shown, submitted)
	assert.EqualValues(t, 1, fc.calls.Load())
	assert.Equal(t, shown.Request(), fc.last)

	assert.Equal(t, Composing, c.State())
	d := c.Draft()
	assert.True(t, d.IsEmpty(), "success clears the draft")
	assert.Equal(t, model.ID("7"), d.AuditoriumID)

	assert.Equal(t, []string{
		"composing>confirming",
		"confirming>submitting",
		"submitting>succeeded",
		"succeeded>composing",
	}, transitions)
}

func TestConfirm_FailurePreservesDraft(t *testing.T) {
	fc := &fakeCreator{err: &model.APIError{StatusCode: 409, Message: "slot taken"}}
	c := NewComposer("7", fc)
	require.NoError(t, c.SetStart(june1))
	require.NoError(t, c.SetPurpose("Workshop"))
	before, err := c.Review()
	require.NoError(t, err)

	_, err = c.Confirm(context.Background())
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, Confirming, c.State())
	assert.Equal(t, before, c.Draft())
	assert.ErrorAs(t, c.LastError(), &apiErr)

	// Retry from Confirming.
	fc.err = nil
	_, err = c.Confirm(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, fc.calls.Load())
	assert.NoError(t, c.LastError())
}

func TestCancel_KeepsFields(t *testing.T) {
	c := NewComposer("7", &fakeCreator{})
	require.NoError(t, c.SetStart(june1))
	require.NoError(t, c.SetPurpose("Workshop"))
	_, err := c.Review()
	require.NoError(t, err)

	assert.ErrorIs(t, c.SetStart(june1.Add(time.Hour)), ErrNotComposing, "no edits while confirming")

	require.NoError(t, c.Cancel())
	assert.Equal(t, Composing, c.State())
	_, ok := c.Summary()
	assert.False(t, ok)
	assert.Equal(t, june1, c.Draft().Start)
	assert.Equal(t, "Workshop", c.Draft().Purpose)

	assert.ErrorIs(t, c.Cancel(), ErrNotConfirming)
}

func TestConfirm_ConcurrentDoubleConfirmIssuesOneCall(t *testing.T) {
	fc := &fakeCreator{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	c := NewComposer("7", fc)
	require.NoError(t, c.SetStart(june1))
	require.NoError(t, c.SetPurpose("Workshop"))
	_, err := c.Review()
	require.NoError(t, err)

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Confirm(context.Background())
		firstDone <- err
	}()
	<-fc.entered
	assert.Equal(t, Submitting, c.State())

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Confirm(context.Background())
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrSubmitInFlight)
	}
	assert.ErrorIs(t, c.SetPurpose("other"), ErrNotComposing)

	close(fc.gate)
	require.NoError(t, <-firstDone)
	assert.EqualValues(t, 1, fc.calls.Load())

	// The draft was consumed; a further confirm has nothing to submit.
	_, err = c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNotConfirming)
	assert.EqualValues(t, 1, fc.calls.Load())
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: []string{"start", "purpose"}}
	assert.Equal(t, "please fill all the details (missing start, purpose)", err.Error())
	assert.False(t, errors.Is(err, ErrNotComposing))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "state(42)", State(42).String())
}
