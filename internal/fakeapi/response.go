package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/me/audictl/pkg/model"
)

// respondJSON writes data as a JSON body.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondMessage writes the acknowledgement shape used by mutating endpoints.
func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, model.MessageResponse{Message: msg})
}

// respondError writes {"message": msg}.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, model.ErrorBody{Message: msg})
}

// decodeJSON reads the request body into v and validates it.
func (s *Server) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
