// Package service contains the business logic for the citation system.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/repo"
)

// ReasonDirect labels candidates produced by the substring fallback, which is
// lower-trust than any structured match and scores below the partial band.
const ReasonDirect = "Direct search match"

// MatchService finds possible duplicate drivers for a partial identity.
// All operations are read-only and stateless; they may run with unlimited
// concurrency.
type MatchService struct {
	drivers   repo.DriverRepo
	citations repo.CitationRepo
}

// NewMatchService constructs a MatchService backed by the provided repos.
func NewMatchService(drivers repo.DriverRepo, citations repo.CitationRepo) *MatchService {
	return &MatchService{drivers: drivers, citations: citations}
}

// FindPossibleDuplicates scores candidate drivers against a partial identity.
//
// Each matching rule is evaluated independently and the highest-confidence
// reason wins per candidate; confidences are never summed:
//
//	license number exact        → 100 "License number match"
//	first+last + matching DOB   →  95 "Name + DOB match"
//	first+last, DOB absent/off  →  70 "Name match only"
//	last name only              → 40–50 "Partial name match"
//
// A plate or engine-chassis number is a vehicle-level signal: it fills
// MatchResult.VehicleHistory and never raises driver confidence, since a
// vehicle can have multiple legitimate drivers.
//
// An empty fragment returns an empty result without touching the database.
// If structured matching yields zero candidates, the substring fallback runs
// and the result is flagged Fallback so callers can distinguish "no
// duplicates" from "no matches at all".
func (s *MatchService) FindPossibleDuplicates(ctx context.Context, frag domain.IdentityFragment) (domain.MatchResult, error) {
	const op = "service.MatchService.FindPossibleDuplicates"

	if frag.Empty() {
		return domain.MatchResult{Candidates: []domain.MatchCandidate{}}, nil
	}

	best := make(map[uuid.UUID]domain.MatchCandidate)

	// License number: the strongest signal there is.
	if license := strVal(frag.LicenseNumber); license != "" {
		d, err := s.drivers.GetByLicense(ctx, license)
		switch {
		case err == nil:
			keepBest(best, d, domain.ConfidenceLicense, domain.ReasonLicense)
		case !errors.Is(err, domain.ErrNotFound):
			return domain.MatchResult{}, storageWrap(op, err)
		}
	}

	first := strVal(frag.FirstName)
	last := strVal(frag.LastName)

	switch {
	case first != "" && last != "":
		matches, err := s.drivers.FindByName(ctx, first, last)
		if err != nil {
			return domain.MatchResult{}, storageWrap(op, err)
		}
		for _, d := range matches {
			if frag.DateOfBirth != nil && d.DateOfBirth != nil && sameDate(*frag.DateOfBirth, *d.DateOfBirth) {
				keepBest(best, d, domain.ConfidenceNameDOB, domain.ReasonNameDOB)
			} else {
				keepBest(best, d, domain.ConfidenceName, domain.ReasonName)
			}
		}
	case last != "":
		// Single-word searches land here: last name only, scored within the
		// 40-50 band by edit-distance similarity.
		matches, err := s.drivers.FindByLastName(ctx, last)
		if err != nil {
			return domain.MatchResult{}, storageWrap(op, err)
		}
		for _, d := range matches {
			keepBest(best, d, partialConfidence(last, d.LastName), domain.ReasonPartial)
		}
	}

	result := domain.MatchResult{}

	// Vehicle-level signal, reported alongside rather than folded into
	// driver confidence. Plate first, engine/chassis for unplated vehicles.
	if vehicle := firstNonEmpty(strVal(frag.PlateNumber), strVal(frag.EngineChassisNumber)); vehicle != "" {
		history, err := s.citations.HistoryByVehicle(ctx, vehicle, nil)
		if err != nil {
			return domain.MatchResult{}, storageWrap(op, err)
		}
		result.VehicleHistory = history
	}

	if len(best) == 0 {
		// Structured matching found nothing, so run the lower-trust fallback
		// on the most specific term available.
		term := firstNonEmpty(strVal(frag.LicenseNumber), last, first, strVal(frag.PlateNumber))
		fallback, err := s.DirectSearch(ctx, term)
		if err != nil {
			return domain.MatchResult{}, err
		}
		fallback.VehicleHistory = result.VehicleHistory
		return fallback, nil
	}

	candidates, err := s.rankCandidates(ctx, best)
	if err != nil {
		return domain.MatchResult{}, storageWrap(op, err)
	}
	result.Candidates = candidates
	return result, nil
}

// DirectSearch runs the substring fallback across name, license, and plate
// fields. Results are always flagged Fallback and score below every
// structured tier. Callers own name-order handling: for a two-token query
// the search endpoint tries both (first,last) and (last,first) and
// deduplicates before display.
func (s *MatchService) DirectSearch(ctx context.Context, freeText string) (domain.MatchResult, error) {
	const op = "service.MatchService.DirectSearch"

	term := strings.TrimSpace(freeText)
	if term == "" {
		return domain.MatchResult{Candidates: []domain.MatchCandidate{}, Fallback: true}, nil
	}

	matches, err := s.drivers.DirectSearch(ctx, term)
	if err != nil {
		return domain.MatchResult{}, storageWrap(op, err)
	}

	best := make(map[uuid.UUID]domain.MatchCandidate, len(matches))
	for _, d := range matches {
		keepBest(best, d, directConfidence(term, d), ReasonDirect)
	}

	candidates, err := s.rankCandidates(ctx, best)
	if err != nil {
		return domain.MatchResult{}, storageWrap(op, err)
	}
	return domain.MatchResult{Candidates: candidates, Fallback: true}, nil
}

// rankCandidates attaches citation counts and orders candidates by confidence
// descending, ties broken by most total historical citations: the record
// with more citations is more likely the established one and is the better
// merge target.
func (s *MatchService) rankCandidates(ctx context.Context, best map[uuid.UUID]domain.MatchCandidate) ([]domain.MatchCandidate, error) {
	ids := make([]uuid.UUID, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}

	counts, err := s.drivers.CitationCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.MatchCandidate, 0, len(best))
	for id, c := range best {
		c.CitationCount = counts[id]
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if candidates[i].CitationCount != candidates[j].CitationCount {
			return candidates[i].CitationCount > candidates[j].CitationCount
		}
		return candidates[i].Driver.FullName() < candidates[j].Driver.FullName()
	})

	return candidates, nil
}

// keepBest records the candidate unless a higher-confidence reason for the
// same driver is already present.
func keepBest(best map[uuid.UUID]domain.MatchCandidate, d domain.Driver, confidence int, reason string) {
	if existing, ok := best[d.ID]; ok && existing.Confidence >= confidence {
		return
	}
	best[d.ID] = domain.MatchCandidate{Driver: d, Confidence: confidence, Reason: reason}
}

// partialConfidence places a last-name-only match inside the 40-50 band by
// edit-distance similarity: an exact (case-folded) match scores 50, distant
// spellings approach 40.
func partialConfidence(query, candidate string) int {
	span := domain.ConfidencePartialMax - domain.ConfidencePartialMin
	return domain.ConfidencePartialMin + int(similarity(query, candidate)*float64(span)+0.5)
}

// directConfidence scores a fallback hit strictly below the partial band,
// using the best similarity of the term against either name part.
func directConfidence(term string, d domain.Driver) int {
	sim := similarity(term, d.LastName)
	if s := similarity(term, d.FirstName); s > sim {
		sim = s
	}
	if d.LicenseNumber != nil {
		if s := similarity(term, *d.LicenseNumber); s > sim {
			sim = s
		}
	}
	// Cap at ConfidencePartialMin-1 so fallback hits always rank below
	// structured partial matches.
	return int(sim * float64(domain.ConfidencePartialMin-1))
}

// similarity returns 1 - dist/maxlen over case-folded inputs, in [0,1].
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" && b == "" {
		return 0
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	if dist >= maxLen {
		return 0
	}
	return 1 - float64(dist)/float64(maxLen)
}

// sameDate compares two timestamps by calendar date, ignoring time of day.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// storageWrap maps repo failures onto the error taxonomy: sentinel domain
// errors pass through, anything else becomes a typed storage failure that
// callers can distinguish from "zero matches".
func storageWrap(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorage, err)
}
