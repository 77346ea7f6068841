package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/me/audictl/pkg/model"
)

// Duration is the fixed length of every booking.
const Duration = 2 * time.Hour

// Draft is a booking being composed. End is never set directly: it is
// always Start + Duration, or zero when Start is zero.
type Draft struct {
	AuditoriumID model.ID  `validate:"required"`
	Start        time.Time `validate:"required"`
	End          time.Time `validate:"required"`
	Purpose      string    `validate:"required"`
}

// EndFor returns the derived end time for start.
func EndFor(start time.Time) time.Time {
	if start.IsZero() {
		return time.Time{}
	}
	return start.Add(Duration)
}

// Request converts the draft to the create-booking payload.
func (d Draft) Request() model.BookingRequest {
	return model.BookingRequest{
		AuditoriumID: d.AuditoriumID,
		Start:        d.Start,
		End:          d.End,
		Purpose:      d.Purpose,
	}
}

// IsEmpty reports whether none of the user-edited fields are set.
func (d Draft) IsEmpty() bool {
	return d.Start.IsZero() && d.End.IsZero() && d.Purpose == ""
}

// ValidationError lists the draft fields that are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("please fill all the details (missing %s)", strings.Join(e.Fields, ", "))
}

var fieldNames = map[string]string{
	"AuditoriumID": "auditorium",
	"Start":        "start",
	"End":          "end",
	"Purpose":      "purpose",
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validateDraft returns a *ValidationError naming each missing field.
func validateDraft(v *validator.Validate, d Draft) error {
	err := v.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate draft: %w", err)
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		name := fieldNames[fe.StructField()]
		if name == "" {
			name = strings.ToLower(fe.StructField())
		}
		ve.Fields = append(ve.Fields, name)
	}
	return ve
}
