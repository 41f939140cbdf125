package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// mergeRequest is the JSON body for POST /drivers/{id}/merge.
type mergeRequest struct {
	DuplicateIDs []uuid.UUID `json:"duplicate_ids"`
}

// MergeDrivers handles POST /api/v1/drivers/{id}/merge.
// The path ID is the primary driver; the body lists the duplicates whose
// citations are repointed at it in one all-or-nothing transaction.
func (s *Server) MergeDrivers(w http.ResponseWriter, r *http.Request) {
	primaryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid driver id")
		return
	}

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	result, err := s.merges.MergeDrivers(r.Context(), primaryID, req.DuplicateIDs)
	if err != nil {
		respondError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.MergesCompleted.Inc()
		s.metrics.CitationsRepointed.Add(float64(result.CitationsRepointed))
	}

	respondJSON(w, http.StatusOK, result)
}
