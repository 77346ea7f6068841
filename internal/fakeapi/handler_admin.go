package fakeapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/me/audictl/pkg/model"
)

func (s *Server) handleAdminListAuditoriums(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.data.listAuditoriums(false))
}

func (s *Server) handleAddAuditorium(w http.ResponseWriter, r *http.Request) {
	var a model.Auditorium
	if err := s.decodeJSON(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created := s.data.addAuditorium(a)
	s.logger.Info("auditorium added", "id", created.ID.String(), "name", created.Name)
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateAuditorium(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "auditorium not found")
		return
	}
	var a model.Auditorium
	if err := s.decodeJSON(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.data.updateAuditorium(id, a)
	if err != nil {
		respondError(w, http.StatusNotFound, "auditorium not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAuditorium(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err == nil {
		err = s.data.deleteAuditorium(id)
	}
	if err != nil {
		respondError(w, http.StatusNotFound, "auditorium not found")
		return
	}
	respondMessage(w, http.StatusOK, "auditorium deleted")
}

func (s *Server) handleAdminListBookings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.data.listBookings(""))
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "booking not found")
		return
	}
	var req model.StatusUpdate
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, ok := model.ParseBookingStatus(string(req.BookingStatus))
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown booking status "+string(req.BookingStatus))
		return
	}
	s.applyTransition(w, r, id, "", next, "booking "+strings.ToLower(string(next)))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.data.listUsers())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.data.stats())
}
