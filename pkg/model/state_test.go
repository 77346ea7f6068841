package model

import "testing"

func TestBookingStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   BookingStatus
		terminal bool
	}{
		{BookingStatusPending, false},
		{BookingStatusApproved, true},
		{BookingStatusRejected, true},
		{BookingStatusCancelled, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("BookingStatus(%q).IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  BookingStatus
		to    BookingStatus
		valid bool
	}{
		{BookingStatusPending, BookingStatusApproved, true},
		{BookingStatusPending, BookingStatusRejected, true},
		{BookingStatusPending, BookingStatusCancelled, true},

		{BookingStatusPending, BookingStatusPending, false},
		{BookingStatusApproved, BookingStatusCancelled, false},
		{BookingStatusRejected, BookingStatusApproved, false},
		{BookingStatusCancelled, BookingStatusPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("BookingStatus(%q).CanTransitionTo(%q) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestBookingStatus_CanCancel(t *testing.T) {
	for _, s := range []BookingStatus{BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled, "UNKNOWN"} {
		if s.CanCancel() {
			t.Errorf("BookingStatus(%q).CanCancel() = true, want false", s)
		}
		if len(s.AdminActions()) != 0 {
			t.Errorf("BookingStatus(%q).AdminActions() = %v, want none", s, s.AdminActions())
		}
	}
	if !BookingStatusPending.CanCancel() {
		t.Error("PENDING booking should be cancellable")
	}
	if n := len(BookingStatusPending.AdminActions()); n != 3 {
		t.Errorf("PENDING admin actions = %d, want 3", n)
	}
}

func TestParseBookingStatus(t *testing.T) {
	tests := []struct {
		in   string
		want BookingStatus
		ok   bool
	}{
		{"pending", BookingStatusPending, true},
		{" Approved ", BookingStatusApproved, true},
		{"CANCELLED", BookingStatusCancelled, true},
		{"deleted", "DELETED", false},
	}
	for _, tt := range tests {
		got, ok := ParseBookingStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBookingStatus(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
