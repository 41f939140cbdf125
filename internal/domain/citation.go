package domain

import (
	"time"

	"github.com/google/uuid"
)

// Citation statuses. Payment state transitions beyond these labels are owned
// by the payments module, not this core.
const (
	CitationStatusUnpaid = "unpaid"
	CitationStatusPaid   = "paid"
	CitationStatusVoided = "voided"
)

// Citation is a single traffic-stop record. The name and address fields are a
// snapshot of the driver at apprehension time, kept denormalized so the
// historical record survives later edits or merges of the driver row.
// Citations are soft-deleted (DeletedAt + DeleteReason), never hard-deleted.
type Citation struct {
	ID                  uuid.UUID  `json:"id"`
	TicketNumber        string     `json:"ticket_number"`
	DriverID            *uuid.UUID `json:"driver_id,omitempty"` // nil until identity is resolved; repointed by merges
	ApprehendedAt       time.Time  `json:"apprehended_at"`
	PlateNumber         *string    `json:"plate_number,omitempty"`
	EngineChassisNumber *string    `json:"engine_chassis_number,omitempty"` // fallback identifier for unplated vehicles

	// Snapshot of driver identity at the time of citation.
	LastName     string `json:"last_name"`
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name,omitempty"`
	Barangay     string `json:"barangay,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Province     string `json:"province,omitempty"`

	Status       string     `json:"status"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeleteReason string     `json:"delete_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Deleted reports whether the citation has been voided.
func (c Citation) Deleted() bool {
	return c.DeletedAt != nil
}
