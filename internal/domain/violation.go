package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopspring/decimal"
)

// ViolationType is a catalog entry with three escalating fine amounts.
// Read-only from this core's perspective; the catalog is maintained by the
// admin module.
type ViolationType struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	FineFirst  decimal.Decimal `json:"fine_first"`
	FineSecond decimal.Decimal `json:"fine_second"`
	FineThird  decimal.Decimal `json:"fine_third"` // also applies to 4th+ offenses
}

// FineForOrdinal returns the fine amount for the given offense ordinal.
// Ordinals above 3 bill at the third-offense rate.
func (vt ViolationType) FineForOrdinal(ordinal int) decimal.Decimal {
	switch {
	case ordinal <= 1:
		return vt.FineFirst
	case ordinal == 2:
		return vt.FineSecond
	default:
		return vt.FineThird
	}
}

// CitationViolation links a citation to a violation type and records the
// offense ordinal resolved at citation time. It is a historical fact:
// immutable once created, never recomputed when later citations arrive.
type CitationViolation struct {
	ID              uuid.UUID       `json:"id"`
	CitationID      uuid.UUID       `json:"citation_id"`
	ViolationTypeID uuid.UUID       `json:"violation_type_id"`
	OffenseOrdinal  int             `json:"offense_ordinal"` // 1, 2, or 3 (capped)
	FineAmount      decimal.Decimal `json:"fine_amount"`     // tier fine snapshotted at citation time
	CreatedAt       time.Time       `json:"created_at"`
}

// HistoryRecord is one row of a driver's or vehicle's offense history:
// a citation joined with one of its violations.
type HistoryRecord struct {
	CitationID        uuid.UUID       `json:"citation_id"`
	TicketNumber      string          `json:"ticket_number"`
	ApprehendedAt     time.Time       `json:"apprehended_at"`
	PlateNumber       *string         `json:"plate_number,omitempty"`
	ViolationTypeID   uuid.UUID       `json:"violation_type_id"`
	ViolationTypeName string          `json:"violation_type_name"`
	OffenseOrdinal    int             `json:"offense_ordinal"`
	FineAmount        decimal.Decimal `json:"fine_amount"`
	Status            string          `json:"status"`
}
