package fakeapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/audictl/pkg/model"
)

func (s *Server) handleUserListAuditoriums(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.data.listAuditoriums(true))
}

func (s *Server) handleUserGetAuditorium(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "auditorium not found")
		return
	}
	a, err := s.data.getAuditorium(id)
	if err != nil || !a.Active {
		respondError(w, http.StatusNotFound, "auditorium not found")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	acct := accountFromContext(r.Context())
	var req model.BookingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := s.data.createBooking(acct.user.Email, req)
	switch {
	case errors.Is(err, errNotFound):
		respondError(w, http.StatusNotFound, "auditorium not found or inactive")
		return
	case errors.Is(err, errConflict):
		respondError(w, http.StatusConflict, "auditorium is already booked for this time slot")
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUserListBookings(w http.ResponseWriter, r *http.Request) {
	acct := accountFromContext(r.Context())
	respondJSON(w, http.StatusOK, s.data.listBookings(acct.user.Email))
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	acct := accountFromContext(r.Context())
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "booking not found")
		return
	}
	s.applyTransition(w, r, id, acct.user.Email, model.BookingStatusCancelled, "booking cancelled")
}

// applyTransition runs a status change and writes the outcome.
func (s *Server) applyTransition(w http.ResponseWriter, r *http.Request, id int, owner string, next model.BookingStatus, msg string) {
	_, err := s.data.transition(id, owner, next)
	switch {
	case errors.Is(err, errNotFound):
		respondError(w, http.StatusNotFound, "booking not found")
		return
	case errors.Is(err, errTransition):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, msg)
}
