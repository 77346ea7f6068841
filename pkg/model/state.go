package model

import "strings"

// BookingStatus represents the lifecycle state of a Booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusApproved  BookingStatus = "APPROVED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// String returns the string representation of the booking status.
func (s BookingStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the booking can no longer change status.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// IsValid reports whether s is one of the known statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// ValidBookingTransitions defines the status transitions the server accepts.
// Only pending bookings can move.
var ValidBookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled},
}

// CanTransitionTo returns true if moving from the current status to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range ValidBookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanCancel reports whether the owner may cancel a booking in this status.
func (s BookingStatus) CanCancel() bool {
	return s == BookingStatusPending
}

// AdminActions returns the transitions an administrator is offered.
func (s BookingStatus) AdminActions() []BookingStatus {
	return ValidBookingTransitions[s]
}

// ParseBookingStatus converts a user-supplied string (any case) to a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.IsValid()
}
