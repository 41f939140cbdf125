package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/repo"
)

// CitationIntake is the input for recording one traffic stop. DriverID set
// means the officer chose "use existing" from the duplicate candidates;
// nil means "create new" from the identity fields below.
type CitationIntake struct {
	TicketNumber        string
	ApprehendedAt       time.Time
	DriverID            *uuid.UUID
	PlateNumber         *string
	EngineChassisNumber *string

	// Identity fields. For a new driver they become the record; for an
	// existing driver they enrich fields the record is still missing.
	LastName      string
	FirstName     string
	MiddleName    string
	Suffix        string
	DateOfBirth   *time.Time
	LicenseNumber *string
	Barangay      string
	Municipality  string
	Province      string
	Zone          string

	ViolationTypeIDs []uuid.UUID
}

// IntakeResult is the recorded citation with its resolved violations.
type IntakeResult struct {
	Citation   domain.Citation            `json:"citation"`
	Driver     domain.Driver              `json:"driver"`
	Violations []domain.CitationViolation `json:"violations"`
}

// IntakeService records citations: it creates or enriches the driver record,
// snapshots identity fields onto the citation, and resolves the offense
// ordinal and fine tier for every violation, all in one transaction.
type IntakeService struct {
	tx Transactor
}

// NewIntakeService constructs an IntakeService.
func NewIntakeService(tx Transactor) *IntakeService {
	return &IntakeService{tx: tx}
}

// Record persists one citation.
//
// Ordinal resolution happens inside the same transaction, counting prior
// non-deleted citations for the driver per violation type before the new
// violation row is inserted, so the citation being recorded never counts
// toward its own ordinal.
func (s *IntakeService) Record(ctx context.Context, in CitationIntake) (IntakeResult, error) {
	const op = "service.IntakeService.Record"

	if err := validateIntake(in); err != nil {
		return IntakeResult{}, err
	}

	var result IntakeResult
	err := s.tx.RunInTx(ctx, func(r repo.Repos) error {
		driver, err := s.resolveDriver(ctx, r, in)
		if err != nil {
			return err
		}

		citation, err := r.Citations.Create(ctx, domain.Citation{
			TicketNumber:        strings.TrimSpace(in.TicketNumber),
			DriverID:            &driver.ID,
			ApprehendedAt:       in.ApprehendedAt,
			PlateNumber:         in.PlateNumber,
			EngineChassisNumber: in.EngineChassisNumber,
			LastName:            driver.LastName,
			FirstName:           driver.FirstName,
			MiddleName:          driver.MiddleName,
			Barangay:            driver.Barangay,
			Municipality:        driver.Municipality,
			Province:            driver.Province,
			Status:              domain.CitationStatusUnpaid,
		})
		if err != nil {
			return err
		}

		violations, err := s.recordViolations(ctx, r, driver.ID, citation.ID, in.ViolationTypeIDs)
		if err != nil {
			return err
		}

		result = IntakeResult{Citation: citation, Driver: driver, Violations: violations}
		return nil
	})
	if err != nil {
		return IntakeResult{}, storageWrap(op, err)
	}
	return result, nil
}

// resolveDriver returns the driver the citation belongs to: the chosen
// existing record (enriched in place when the intake supplies fields it is
// missing) or a freshly created one.
func (s *IntakeService) resolveDriver(ctx context.Context, r repo.Repos, in CitationIntake) (domain.Driver, error) {
	if in.DriverID == nil {
		return r.Drivers.Create(ctx, domain.Driver{
			LastName:      strings.TrimSpace(in.LastName),
			FirstName:     strings.TrimSpace(in.FirstName),
			MiddleName:    strings.TrimSpace(in.MiddleName),
			Suffix:        strings.TrimSpace(in.Suffix),
			DateOfBirth:   in.DateOfBirth,
			LicenseNumber: trimPtr(in.LicenseNumber),
			Barangay:      strings.TrimSpace(in.Barangay),
			Municipality:  strings.TrimSpace(in.Municipality),
			Province:      strings.TrimSpace(in.Province),
			Zone:          strings.TrimSpace(in.Zone),
		})
	}

	driver, err := r.Drivers.GetByID(ctx, *in.DriverID)
	if err != nil {
		return domain.Driver{}, err
	}

	if enriched := enrichDriver(&driver, in); enriched {
		return r.Drivers.Update(ctx, driver)
	}
	return driver, nil
}

// enrichDriver fills fields the stored record is missing from the intake.
// Existing values are never overwritten: a later citation adds information,
// it does not correct it.
func enrichDriver(d *domain.Driver, in CitationIntake) bool {
	changed := false
	if d.DateOfBirth == nil && in.DateOfBirth != nil {
		d.DateOfBirth = in.DateOfBirth
		changed = true
	}
	if d.LicenseNumber == nil {
		if license := trimPtr(in.LicenseNumber); license != nil {
			d.LicenseNumber = license
			changed = true
		}
	}
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&d.MiddleName, in.MiddleName},
		{&d.Suffix, in.Suffix},
		{&d.Barangay, in.Barangay},
		{&d.Municipality, in.Municipality},
		{&d.Province, in.Province},
		{&d.Zone, in.Zone},
	} {
		if *f.dst == "" && strings.TrimSpace(f.src) != "" {
			*f.dst = strings.TrimSpace(f.src)
			changed = true
		}
	}
	return changed
}

// recordViolations resolves the ordinal and tier fine per violation type and
// inserts the immutable join rows. Repeated types in one intake collapse to
// a single row.
func (s *IntakeService) recordViolations(ctx context.Context, r repo.Repos, driverID, citationID uuid.UUID, typeIDs []uuid.UUID) ([]domain.CitationViolation, error) {
	seen := make(map[uuid.UUID]bool, len(typeIDs))
	violations := make([]domain.CitationViolation, 0, len(typeIDs))

	for _, typeID := range typeIDs {
		if seen[typeID] {
			continue
		}
		seen[typeID] = true

		vt, err := r.Violations.GetTypeByID(ctx, typeID)
		if err != nil {
			return nil, err
		}

		count, err := r.Citations.CountPriorByDriver(ctx, driverID, typeID)
		if err != nil {
			return nil, err
		}
		ordinal := capOrdinal(count + 1)

		v, err := r.Violations.CreateViolation(ctx, domain.CitationViolation{
			CitationID:      citationID,
			ViolationTypeID: typeID,
			OffenseOrdinal:  ordinal,
			FineAmount:      vt.FineForOrdinal(ordinal),
		})
		if err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, nil
}

// validateIntake enforces the business rules for recording a citation.
func validateIntake(in CitationIntake) error {
	const op = "service.IntakeService.Record"

	if strings.TrimSpace(in.TicketNumber) == "" {
		return fmt.Errorf("%s: %w: ticket number is required", op, domain.ErrValidation)
	}
	if in.ApprehendedAt.IsZero() {
		return fmt.Errorf("%s: %w: apprehension time is required", op, domain.ErrValidation)
	}
	if len(in.ViolationTypeIDs) == 0 {
		return fmt.Errorf("%s: %w: at least one violation is required", op, domain.ErrValidation)
	}
	if in.DriverID == nil {
		if strings.TrimSpace(in.LastName) == "" || strings.TrimSpace(in.FirstName) == "" {
			return fmt.Errorf("%s: %w: last name and first name are required for a new driver", op, domain.ErrValidation)
		}
	}
	return nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	if t == "" {
		return nil
	}
	return &t
}
