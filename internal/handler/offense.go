package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// GetOffenseHistory handles GET /api/v1/drivers/{id}/offense-history.
// Optional ?violation_type_id= narrows the history to one violation type.
func (s *Server) GetOffenseHistory(w http.ResponseWriter, r *http.Request) {
	driverID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid driver id")
		return
	}

	violationTypeID, ok := optionalTypeID(w, r)
	if !ok {
		return
	}

	records, err := s.offenses.GetOffenseHistory(r.Context(), driverID, violationTypeID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"history": records})
}

// GetVehicleOffenseHistory handles GET /api/v1/vehicles/{vehicle}/offense-history.
// The identifier is a plate number or, for unplated vehicles, an engine or
// chassis number. Vehicle-level history: never resolves a driver.
func (s *Server) GetVehicleOffenseHistory(w http.ResponseWriter, r *http.Request) {
	vehicle := chi.URLParam(r, "vehicle")

	violationTypeID, ok := optionalTypeID(w, r)
	if !ok {
		return
	}

	records, err := s.offenses.GetVehicleOffenseHistory(r.Context(), vehicle, violationTypeID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"history": records})
}

// optionalTypeID parses the violation_type_id query parameter if present.
// Writes a 400 and returns ok=false when the value is not a UUID.
func optionalTypeID(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get("violation_type_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(w, "invalid violation_type_id")
		return nil, false
	}
	return &id, true
}
