package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/metrics"
)

// dateLayout is the wire format for dates of birth.
const dateLayout = "2006-01-02"

// findDuplicatesRequest is the JSON body for POST /duplicates/search.
// Absent fields stay nil; an empty-string field is treated as absent by the
// service, so clients cannot accidentally widen a search with "".
type findDuplicatesRequest struct {
	LicenseNumber       *string `json:"license_number"`
	PlateNumber         *string `json:"plate_number"`
	EngineChassisNumber *string `json:"engine_chassis_number"`
	FirstName           *string `json:"first_name"`
	LastName            *string `json:"last_name"`
	DateOfBirth         *string `json:"date_of_birth"` // YYYY-MM-DD
	Barangay            *string `json:"barangay"`
}

// FindDuplicates handles POST /api/v1/duplicates/search.
// Body: a partial identity fragment. Response: ranked match candidates plus
// any vehicle history, with a fallback flag when the lower-trust substring
// search produced the candidates.
func (s *Server) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	var req findDuplicatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	frag := domain.IdentityFragment{
		LicenseNumber:       req.LicenseNumber,
		PlateNumber:         req.PlateNumber,
		EngineChassisNumber: req.EngineChassisNumber,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Barangay:            req.Barangay,
	}
	if req.DateOfBirth != nil && strings.TrimSpace(*req.DateOfBirth) != "" {
		dob, err := time.Parse(dateLayout, strings.TrimSpace(*req.DateOfBirth))
		if err != nil {
			badRequest(w, "date_of_birth must be YYYY-MM-DD")
			return
		}
		frag.DateOfBirth = &dob
	}

	start := time.Now()
	result, err := s.matches.FindPossibleDuplicates(r.Context(), frag)
	if err != nil {
		respondError(w, err)
		return
	}
	s.observeMatch(result, time.Since(start))

	respondJSON(w, http.StatusOK, result)
}

// SearchDrivers handles GET /api/v1/drivers/search?q=.
//
// Citation officers inconsistently order names, so for a two-token query
// this handler tries both (first,last) and (last,first) interpretations and
// deduplicates the merged candidate set by driver identity, keeping the
// higher-confidence entry. Single tokens search as a last name; longer
// queries go straight to the substring search.
func (s *Server) SearchDrivers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		badRequest(w, "query parameter q is required")
		return
	}

	start := time.Now()
	result, err := s.searchByTokens(r, q)
	if err != nil {
		respondError(w, err)
		return
	}
	s.observeMatch(result, time.Since(start))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) searchByTokens(r *http.Request, q string) (domain.MatchResult, error) {
	tokens := strings.Fields(q)
	ctx := r.Context()

	switch len(tokens) {
	case 1:
		return s.matches.FindPossibleDuplicates(ctx, domain.IdentityFragment{LastName: &tokens[0]})
	case 2:
		// Both name orders, merged and deduplicated by driver ID.
		asGiven, err := s.matches.FindPossibleDuplicates(ctx, domain.IdentityFragment{
			FirstName: &tokens[0], LastName: &tokens[1],
		})
		if err != nil {
			return domain.MatchResult{}, err
		}
		swapped, err := s.matches.FindPossibleDuplicates(ctx, domain.IdentityFragment{
			FirstName: &tokens[1], LastName: &tokens[0],
		})
		if err != nil {
			return domain.MatchResult{}, err
		}
		return mergeResults(asGiven, swapped), nil
	default:
		return s.matches.DirectSearch(ctx, q)
	}
}

// mergeResults combines two candidate sets, keeping the higher-confidence
// entry per driver and preserving confidence-descending order. The merged
// result counts as a fallback only if both inputs were.
func mergeResults(a, b domain.MatchResult) domain.MatchResult {
	best := make(map[uuid.UUID]domain.MatchCandidate, len(a.Candidates)+len(b.Candidates))
	order := make([]uuid.UUID, 0, len(a.Candidates)+len(b.Candidates))

	for _, c := range append(append([]domain.MatchCandidate{}, a.Candidates...), b.Candidates...) {
		id := c.Driver.ID
		existing, ok := best[id]
		if !ok {
			best[id] = c
			order = append(order, id)
			continue
		}
		if c.Confidence > existing.Confidence {
			best[id] = c
		}
	}

	merged := domain.MatchResult{
		Candidates: make([]domain.MatchCandidate, 0, len(order)),
		Fallback:   a.Fallback && b.Fallback,
	}
	for _, id := range order {
		merged.Candidates = append(merged.Candidates, best[id])
	}
	sortCandidates(merged.Candidates)
	return merged
}

// sortCandidates re-sorts after a merge: confidence desc, citation count desc.
func sortCandidates(candidates []domain.MatchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].CitationCount > candidates[j].CitationCount
	})
}

// observeMatch records lookup metrics when a collector is wired.
func (s *Server) observeMatch(result domain.MatchResult, d time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeMatched
	switch {
	case len(result.Candidates) == 0:
		outcome = metrics.OutcomeEmpty
	case result.Fallback:
		outcome = metrics.OutcomeFallback
	}
	s.metrics.MatchRequests.WithLabelValues(outcome).Inc()
	s.metrics.MatchDuration.Observe(d.Seconds())
}
