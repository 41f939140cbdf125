package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/service"
)

// recordCitationRequest is the JSON body for POST /citations.
// driver_id set means "use existing"; otherwise a new driver record is
// created from the identity fields.
type recordCitationRequest struct {
	TicketNumber        string      `json:"ticket_number"`
	ApprehendedAt       time.Time   `json:"apprehended_at"`
	DriverID            *uuid.UUID  `json:"driver_id"`
	PlateNumber         *string     `json:"plate_number"`
	EngineChassisNumber *string     `json:"engine_chassis_number"`
	LastName            string      `json:"last_name"`
	FirstName           string      `json:"first_name"`
	MiddleName          string      `json:"middle_name"`
	Suffix              string      `json:"suffix"`
	DateOfBirth         *string     `json:"date_of_birth"` // YYYY-MM-DD
	LicenseNumber       *string     `json:"license_number"`
	Barangay            string      `json:"barangay"`
	Municipality        string      `json:"municipality"`
	Province            string      `json:"province"`
	Zone                string      `json:"zone"`
	ViolationTypeIDs    []uuid.UUID `json:"violation_type_ids"`
}

// RecordCitation handles POST /api/v1/citations.
func (s *Server) RecordCitation(w http.ResponseWriter, r *http.Request) {
	var req recordCitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	in := service.CitationIntake{
		TicketNumber:        req.TicketNumber,
		ApprehendedAt:       req.ApprehendedAt,
		DriverID:            req.DriverID,
		PlateNumber:         req.PlateNumber,
		EngineChassisNumber: req.EngineChassisNumber,
		LastName:            req.LastName,
		FirstName:           req.FirstName,
		MiddleName:          req.MiddleName,
		Suffix:              req.Suffix,
		LicenseNumber:       req.LicenseNumber,
		Barangay:            req.Barangay,
		Municipality:        req.Municipality,
		Province:            req.Province,
		Zone:                req.Zone,
		ViolationTypeIDs:    req.ViolationTypeIDs,
	}
	if req.DateOfBirth != nil && strings.TrimSpace(*req.DateOfBirth) != "" {
		dob, err := time.Parse(dateLayout, strings.TrimSpace(*req.DateOfBirth))
		if err != nil {
			badRequest(w, "date_of_birth must be YYYY-MM-DD")
			return
		}
		in.DateOfBirth = &dob
	}

	result, err := s.intake.Record(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.CitationsRecorded.Inc()
	}

	respondJSON(w, http.StatusCreated, result)
}

// GetCitation handles GET /api/v1/citations/{id}.
func (s *Server) GetCitation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid citation id")
		return
	}

	result, err := s.citations.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// voidCitationRequest is the JSON body for POST /citations/{id}/void.
type voidCitationRequest struct {
	Reason string `json:"reason"`
}

// VoidCitation handles POST /api/v1/citations/{id}/void.
// Soft delete: the citation keeps its snapshot fields and drops out of
// offense counting.
func (s *Server) VoidCitation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid citation id")
		return
	}

	var req voidCitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := s.citations.Void(r.Context(), id, req.Reason); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
