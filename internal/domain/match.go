package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentityFragment is a partial identity bag used to search for duplicate
// drivers. Every field is optional; an empty fragment must never trigger a
// search. Pointers distinguish "field not supplied" from an empty string,
// so callers cannot accidentally pass an empty-string sentinel.
type IdentityFragment struct {
	LicenseNumber       *string    `json:"license_number,omitempty"`
	PlateNumber         *string    `json:"plate_number,omitempty"`
	EngineChassisNumber *string    `json:"engine_chassis_number,omitempty"` // vehicle signal for unplated vehicles
	FirstName           *string    `json:"first_name,omitempty"`
	LastName            *string    `json:"last_name,omitempty"`
	DateOfBirth         *time.Time `json:"date_of_birth,omitempty"`
	Barangay            *string    `json:"barangay,omitempty"`
}

// Empty reports whether no field carries a usable (non-blank) value.
func (f IdentityFragment) Empty() bool {
	for _, p := range []*string{f.LicenseNumber, f.PlateNumber, f.EngineChassisNumber, f.FirstName, f.LastName, f.Barangay} {
		if p != nil && strings.TrimSpace(*p) != "" {
			return false
		}
	}
	return f.DateOfBirth == nil
}

// Match confidence tiers and reasons. Per candidate the highest-confidence
// reason wins; reasons are never summed.
const (
	ConfidenceLicense = 100
	ConfidenceNameDOB = 95
	ConfidenceName    = 70
	// Last-name-only matches score within [ConfidencePartialMin, ConfidencePartialMax]
	// depending on edit-distance similarity.
	ConfidencePartialMin = 40
	ConfidencePartialMax = 50

	ReasonLicense = "License number match"
	ReasonNameDOB = "Name + DOB match"
	ReasonName    = "Name match only"
	ReasonPartial = "Partial name match"
)

// MatchCandidate is an ephemeral search result: a driver plus a confidence
// score and a human-readable reason. Never persisted.
type MatchCandidate struct {
	Driver        Driver `json:"driver"`
	Confidence    int    `json:"confidence"` // 0-100
	Reason        string `json:"reason"`
	CitationCount int    `json:"citation_count"` // total historical citations, used as a tie-break
}

// MatchResult is the full response to a duplicate lookup. Fallback is true
// when the candidates came from the lower-trust substring search rather than
// structured matching, so the UI can show "none similar" vs "not found".
type MatchResult struct {
	Candidates     []MatchCandidate `json:"candidates"`
	VehicleHistory []HistoryRecord  `json:"vehicle_history,omitempty"` // plate signal, kept separate from driver confidence
	Fallback       bool             `json:"fallback"`
}

// MergeResult summarizes a completed driver merge.
type MergeResult struct {
	PrimaryID          uuid.UUID   `json:"primary_id"`
	MergedIDs          []uuid.UUID `json:"merged_ids"`
	SkippedIDs         []uuid.UUID `json:"skipped_ids,omitempty"` // self-merge ids, excluded from the work set
	CitationsRepointed int64       `json:"citations_repointed"`
}
