package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/repo"
)

// MaxOffenseOrdinal caps fine escalation at the third-offense tier: a 4th+
// offense bills at the 3rd-offense rate. Policy constant, not a tunable:
// violation types carry exactly three fine columns.
const MaxOffenseOrdinal = 3

// OffenseKey identifies whose history to count. Keys are tried in priority
// order: DriverID, then LicenseNumber (resolved to a driver), then
// PlateNumber (vehicle-level history, never resolved to a driver; accepts
// an engine/chassis number for unplated vehicles).
type OffenseKey struct {
	DriverID      *uuid.UUID
	LicenseNumber *string
	PlateNumber   *string
}

// OffenseService resolves offense ordinals and serves offense history.
// Read-only and stateless.
type OffenseService struct {
	drivers   repo.DriverRepo
	citations repo.CitationRepo
}

// NewOffenseService constructs an OffenseService backed by the provided repos.
func NewOffenseService(drivers repo.DriverRepo, citations repo.CitationRepo) *OffenseService {
	return &OffenseService{drivers: drivers, citations: citations}
}

// ResolveOffenseOrdinal returns the offense ordinal (1, 2, or 3) the next
// citation for this violation type should carry: min(prior count + 1, 3).
// Soft-deleted citations never count.
//
// A brand-new driver with no history for the type resolves to 1. That is a
// valid answer, distinct from domain.ErrNotFound, which is only returned
// when an explicitly supplied driver ID or license does not resolve at all.
func (s *OffenseService) ResolveOffenseOrdinal(ctx context.Context, key OffenseKey, violationTypeID uuid.UUID) (int, error) {
	const op = "service.OffenseService.ResolveOffenseOrdinal"

	if violationTypeID == uuid.Nil {
		return 0, fmt.Errorf("%s: %w: violation type id is required", op, domain.ErrValidation)
	}

	driverID, err := s.resolveDriverID(ctx, key)
	if err != nil {
		return 0, storageWrap(op, err)
	}

	if driverID != nil {
		count, err := s.citations.CountPriorByDriver(ctx, *driverID, violationTypeID)
		if err != nil {
			return 0, storageWrap(op, err)
		}
		return capOrdinal(count + 1), nil
	}

	if plate := strVal(key.PlateNumber); plate != "" {
		count, err := s.citations.CountPriorByVehicle(ctx, plate, violationTypeID)
		if err != nil {
			return 0, storageWrap(op, err)
		}
		return capOrdinal(count + 1), nil
	}

	return 0, fmt.Errorf("%s: %w: a driver id, license number, or plate number is required", op, domain.ErrValidation)
}

// resolveDriverID applies the key priority. A license that resolves to no
// driver is not an error; resolution just falls through to the plate.
// An explicit driver ID that does not exist is domain.ErrNotFound: it was
// supposed to be validated at an earlier stage.
func (s *OffenseService) resolveDriverID(ctx context.Context, key OffenseKey) (*uuid.UUID, error) {
	if key.DriverID != nil && *key.DriverID != uuid.Nil {
		if _, err := s.drivers.GetByID(ctx, *key.DriverID); err != nil {
			return nil, err
		}
		return key.DriverID, nil
	}

	if license := strVal(key.LicenseNumber); license != "" {
		d, err := s.drivers.GetByLicense(ctx, license)
		if err == nil {
			return &d.ID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

// GetOffenseHistory lists a driver's non-deleted citation violations, newest
// first. A nil violationTypeID returns history across all types.
// Returns domain.ErrNotFound if the driver does not exist.
func (s *OffenseService) GetOffenseHistory(ctx context.Context, driverID uuid.UUID, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error) {
	const op = "service.OffenseService.GetOffenseHistory"

	if _, err := s.drivers.GetByID(ctx, driverID); err != nil {
		return nil, storageWrap(op, err)
	}

	records, err := s.citations.HistoryByDriver(ctx, driverID, violationTypeID)
	if err != nil {
		return nil, storageWrap(op, err)
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records, nil
}

// GetVehicleOffenseHistory lists a vehicle's non-deleted citation violations,
// newest first, without ever resolving a driver. The identifier is a plate
// number or, for unplated vehicles, an engine or chassis number.
func (s *OffenseService) GetVehicleOffenseHistory(ctx context.Context, vehicle string, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error) {
	const op = "service.OffenseService.GetVehicleOffenseHistory"

	if strings.TrimSpace(vehicle) == "" {
		return nil, fmt.Errorf("%s: %w: vehicle identifier is required", op, domain.ErrValidation)
	}

	records, err := s.citations.HistoryByVehicle(ctx, strings.TrimSpace(vehicle), violationTypeID)
	if err != nil {
		return nil, storageWrap(op, err)
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records, nil
}

// capOrdinal clamps an ordinal into {1,2,3}.
func capOrdinal(ordinal int) int {
	if ordinal < 1 {
		return 1
	}
	if ordinal > MaxOffenseOrdinal {
		return MaxOffenseOrdinal
	}
	return ordinal
}
