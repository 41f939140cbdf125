// Package domain contains the core data types for the traffic citation system.
// This package has zero external dependencies beyond ID/decimal types and is
// imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Driver is a unique person record, distinct from any single citation.
// A driver is created on the first citation for a previously-unseen person
// and updated in place when a later citation supplies more complete fields.
// Driver rows are never hard-deleted; only citations referencing them may be
// voided.
type Driver struct {
	ID            uuid.UUID  `json:"id"`
	LastName      string     `json:"last_name"`
	FirstName     string     `json:"first_name"`
	MiddleName    string     `json:"middle_name,omitempty"`
	Suffix        string     `json:"suffix,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`   // nil when unknown
	LicenseNumber *string    `json:"license_number,omitempty"`  // nil for unlicensed apprehensions
	Barangay      string     `json:"barangay,omitempty"`
	Municipality  string     `json:"municipality,omitempty"`
	Province      string     `json:"province,omitempty"`
	Zone          string     `json:"zone,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FullName returns "LAST, FIRST MIDDLE SUFFIX" with empty parts omitted,
// matching how citation officers record names on paper tickets.
func (d Driver) FullName() string {
	name := d.LastName + ", " + d.FirstName
	if d.MiddleName != "" {
		name += " " + d.MiddleName
	}
	if d.Suffix != "" {
		name += " " + d.Suffix
	}
	return name
}
