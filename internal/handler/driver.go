package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// GetDriver handles GET /api/v1/drivers/{id}.
func (s *Server) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid driver id")
		return
	}

	driver, err := s.drivers.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, driver)
}

// ListViolationTypes handles GET /api/v1/violation-types.
func (s *Server) ListViolationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.drivers.ListViolationTypes(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"violation_types": types})
}
