package model

import "time"

// Booking is a reservation as returned by the API. The server owns it; the
// client only reads it and requests transitions.
type Booking struct {
	ID         ID            `json:"id"`
	User       *User         `json:"user,omitempty"`
	Auditorium *Auditorium   `json:"auditorium,omitempty"`
	StartTime  time.Time     `json:"startTime"`
	EndTime    time.Time     `json:"endTime"`
	Purpose    string        `json:"purpose"`
	Status     BookingStatus `json:"status"`
}

// AuditoriumName returns the venue name or "" when the API omitted it.
func (b *Booking) AuditoriumName() string {
	if b.Auditorium == nil {
		return ""
	}
	return b.Auditorium.Name
}

// Username returns the owner's username or "" when the API omitted it.
func (b *Booking) Username() string {
	if b.User == nil {
		return ""
	}
	return b.User.Username
}

// BookingRequest is the body of POST /user/bookings/create.
type BookingRequest struct {
	AuditoriumID ID        `json:"auditoriumId" validate:"required"`
	Start        time.Time `json:"start" validate:"required"`
	End          time.Time `json:"end" validate:"required,gtfield=Start"`
	Purpose      string    `json:"purpose" validate:"required"`
}

// StatusUpdate is the body of PUT /status/{id}.
type StatusUpdate struct {
	BookingStatus BookingStatus `json:"bookingStatus" validate:"required"`
}

// BookingFilter selects bookings in the admin listing. Empty fields match
// everything.
type BookingFilter struct {
	Username string
	Status   BookingStatus
}

// Match reports whether b passes the filter.
func (f BookingFilter) Match(b *Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Username == "" {
		return true
	}
	return b.User.Matches(f.Username)
}

// FilterBookings returns the bookings matching f, preserving order.
func FilterBookings(bookings []Booking, f BookingFilter) []Booking {
	out := make([]Booking, 0, len(bookings))
	for i := range bookings {
		if f.Match(&bookings[i]) {
			out = append(out, bookings[i])
		}
	}
	return out
}

// DashboardStats is the aggregate returned by GET /dashboard/stats.
type DashboardStats struct {
	TotalAuditoriums     int    `json:"totalAuditoriums"`
	ActiveAuditoriums    int    `json:"activeAuditoriums"`
	InactiveAuditoriums  int    `json:"inactiveAuditoriums"`
	TotalBookings        int    `json:"totalBookings"`
	PendingBookings      int    `json:"pendingBookings"`
	ApprovedBookings     int    `json:"approvedBookings"`
	RejectedBookings     int    `json:"rejectedBookings"`
	CancelledBookings    int    `json:"cancelledBookings"`
	MostBookedAuditorium string `json:"mostBookedAuditorium,omitempty"`
}
