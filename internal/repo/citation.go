package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
)

// CitationRepo defines the persistence operations for Citations.
type CitationRepo interface {
	// Create inserts a new citation and returns the persisted record.
	Create(ctx context.Context, c domain.Citation) (domain.Citation, error)

	// GetByID retrieves a single citation by its UUID primary key.
	// Returns domain.ErrNotFound if no citation with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Citation, error)

	// CountPriorByDriver counts non-deleted citations for the driver that
	// carry a violation of the given type.
	CountPriorByDriver(ctx context.Context, driverID, violationTypeID uuid.UUID) (int, error)

	// CountPriorByVehicle counts non-deleted citations for the vehicle that
	// carry a violation of the given type. The identifier matches the plate
	// or, for unplated vehicles, the engine/chassis number. Vehicle-level
	// history: used when no driver identity is available.
	CountPriorByVehicle(ctx context.Context, vehicle string, violationTypeID uuid.UUID) (int, error)

	// HistoryByDriver lists the driver's offense history, newest first.
	// A nil violationTypeID returns history across all violation types.
	HistoryByDriver(ctx context.Context, driverID uuid.UUID, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error)

	// HistoryByVehicle lists the vehicle's offense history, newest first.
	// The identifier matches the plate or the engine/chassis number.
	HistoryByVehicle(ctx context.Context, vehicle string, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error)

	// RepointDriver moves every citation pointing at fromDriverID to
	// toDriverID and returns the number of citations moved. Run it inside a
	// transaction when repointing more than one driver.
	RepointDriver(ctx context.Context, fromDriverID, toDriverID uuid.UUID) (int64, error)

	// SoftDelete voids a citation with a timestamp and reason.
	// Returns domain.ErrNotFound if the citation does not exist or is
	// already voided.
	SoftDelete(ctx context.Context, id uuid.UUID, reason string) error
}

// pgCitationRepo is the Postgres implementation of CitationRepo.
type pgCitationRepo struct {
	db db
}

// NewCitationRepo constructs a CitationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests or merges pass a pgx.Tx.
func NewCitationRepo(db db) CitationRepo {
	return &pgCitationRepo{db: db}
}

const citationColumns = `id, ticket_number, driver_id, apprehended_at, plate_number,
		engine_chassis_number, last_name, first_name, middle_name, barangay,
		municipality, province, status, deleted_at, delete_reason, created_at, updated_at`

// Create inserts a new citation row and returns the full persisted record.
func (r *pgCitationRepo) Create(ctx context.Context, c domain.Citation) (domain.Citation, error) {
	const q = `
		INSERT INTO citations (ticket_number, driver_id, apprehended_at, plate_number,
		                       engine_chassis_number, last_name, first_name, middle_name,
		                       barangay, municipality, province, status)
		VALUES (@ticket_number, @driver_id, @apprehended_at, @plate_number,
		        @engine_chassis_number, @last_name, @first_name, @middle_name,
		        @barangay, @municipality, @province, @status)
		RETURNING ` + citationColumns

	status := c.Status
	if status == "" {
		status = domain.CitationStatusUnpaid
	}
	args := pgx.NamedArgs{
		"ticket_number":         c.TicketNumber,
		"driver_id":             c.DriverID,
		"apprehended_at":        c.ApprehendedAt,
		"plate_number":          c.PlateNumber,
		"engine_chassis_number": c.EngineChassisNumber,
		"last_name":             c.LastName,
		"first_name":            c.FirstName,
		"middle_name":           c.MiddleName,
		"barangay":              c.Barangay,
		"municipality":          c.Municipality,
		"province":              c.Province,
		"status":                status,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanCitation(row)
	if err != nil {
		return domain.Citation{}, fmt.Errorf("repo.CitationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a citation by primary key.
func (r *pgCitationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Citation, error) {
	const q = `SELECT ` + citationColumns + ` FROM citations WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanCitation(row)
	if err != nil {
		return domain.Citation{}, fmt.Errorf("repo.CitationRepo.GetByID: %w", err)
	}
	return result, nil
}

// CountPriorByDriver counts non-deleted citations carrying the violation type
// for the driver.
func (r *pgCitationRepo) CountPriorByDriver(ctx context.Context, driverID, violationTypeID uuid.UUID) (int, error) {
	const q = `
		SELECT count(DISTINCT c.id)
		FROM citations c
		JOIN citation_violations cv ON cv.citation_id = c.id
		WHERE c.driver_id = @driver_id
		  AND cv.violation_type_id = @violation_type_id
		  AND c.deleted_at IS NULL`

	var n int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"driver_id":         driverID,
		"violation_type_id": violationTypeID,
	}).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repo.CitationRepo.CountPriorByDriver: %w", err)
	}
	return int(n), nil
}

// CountPriorByVehicle counts non-deleted citations carrying the violation
// type for the vehicle, matched by plate or engine/chassis number.
func (r *pgCitationRepo) CountPriorByVehicle(ctx context.Context, vehicle string, violationTypeID uuid.UUID) (int, error) {
	const q = `
		SELECT count(DISTINCT c.id)
		FROM citations c
		JOIN citation_violations cv ON cv.citation_id = c.id
		WHERE (c.plate_number = @vehicle OR c.engine_chassis_number = @vehicle)
		  AND cv.violation_type_id = @violation_type_id
		  AND c.deleted_at IS NULL`

	var n int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"vehicle":           vehicle,
		"violation_type_id": violationTypeID,
	}).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repo.CitationRepo.CountPriorByVehicle: %w", err)
	}
	return int(n), nil
}

const historyColumns = `c.id, c.ticket_number, c.apprehended_at, c.plate_number,
		cv.violation_type_id, vt.name, cv.offense_ordinal, cv.fine_amount, c.status`

// HistoryByDriver lists the driver's non-deleted citation violations, newest first.
func (r *pgCitationRepo) HistoryByDriver(ctx context.Context, driverID uuid.UUID, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error) {
	const q = `
		SELECT ` + historyColumns + `
		FROM citations c
		JOIN citation_violations cv ON cv.citation_id = c.id
		JOIN violation_types vt ON vt.id = cv.violation_type_id
		WHERE c.driver_id = @driver_id
		  AND (@violation_type_id::uuid IS NULL OR cv.violation_type_id = @violation_type_id)
		  AND c.deleted_at IS NULL
		ORDER BY c.apprehended_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"driver_id":         driverID,
		"violation_type_id": violationTypeID,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.CitationRepo.HistoryByDriver: %w", err)
	}
	return collectHistory(rows, "repo.CitationRepo.HistoryByDriver")
}

// HistoryByVehicle lists the vehicle's non-deleted citation violations,
// newest first, matched by plate or engine/chassis number.
func (r *pgCitationRepo) HistoryByVehicle(ctx context.Context, vehicle string, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error) {
	const q = `
		SELECT ` + historyColumns + `
		FROM citations c
		JOIN citation_violations cv ON cv.citation_id = c.id
		JOIN violation_types vt ON vt.id = cv.violation_type_id
		WHERE (c.plate_number = @vehicle OR c.engine_chassis_number = @vehicle)
		  AND (@violation_type_id::uuid IS NULL OR cv.violation_type_id = @violation_type_id)
		  AND c.deleted_at IS NULL
		ORDER BY c.apprehended_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"vehicle":           vehicle,
		"violation_type_id": violationTypeID,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.CitationRepo.HistoryByVehicle: %w", err)
	}
	return collectHistory(rows, "repo.CitationRepo.HistoryByVehicle")
}

// RepointDriver relinks all of one driver's citations to another driver.
// Voided citations move too; the merge is about identity, not billing.
func (r *pgCitationRepo) RepointDriver(ctx context.Context, fromDriverID, toDriverID uuid.UUID) (int64, error) {
	const q = `
		UPDATE citations
		SET driver_id = @to_id, updated_at = now()
		WHERE driver_id = @from_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"from_id": fromDriverID, "to_id": toDriverID})
	if err != nil {
		return 0, fmt.Errorf("repo.CitationRepo.RepointDriver: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SoftDelete voids a citation. Already-voided citations are left untouched.
func (r *pgCitationRepo) SoftDelete(ctx context.Context, id uuid.UUID, reason string) error {
	const q = `
		UPDATE citations
		SET deleted_at = now(), delete_reason = @reason, status = @status, updated_at = now()
		WHERE id = @id AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":     id,
		"reason": reason,
		"status": domain.CitationStatusVoided,
	})
	if err != nil {
		return fmt.Errorf("repo.CitationRepo.SoftDelete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CitationRepo.SoftDelete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanCitation maps a single database row into a domain.Citation.
func scanCitation(s scanner) (domain.Citation, error) {
	var (
		c        domain.Citation
		id       pgtype.UUID
		driverID pgtype.UUID
		plate    pgtype.Text
		chassis  pgtype.Text
		deleted  pgtype.Timestamptz
	)

	err := s.Scan(&id, &c.TicketNumber, &driverID, &c.ApprehendedAt, &plate,
		&chassis, &c.LastName, &c.FirstName, &c.MiddleName, &c.Barangay,
		&c.Municipality, &c.Province, &c.Status, &deleted, &c.DeleteReason,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Citation{}, domain.ErrNotFound
		}
		return domain.Citation{}, err
	}

	c.ID = uuid.UUID(id.Bytes)
	if driverID.Valid {
		d := uuid.UUID(driverID.Bytes)
		c.DriverID = &d
	}
	if plate.Valid {
		p := plate.String
		c.PlateNumber = &p
	}
	if chassis.Valid {
		e := chassis.String
		c.EngineChassisNumber = &e
	}
	if deleted.Valid {
		t := deleted.Time
		c.DeletedAt = &t
	}
	return c, nil
}

// collectHistory drains history rows into a slice, closing them when done.
func collectHistory(rows pgx.Rows, op string) ([]domain.HistoryRecord, error) {
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var (
			h          domain.HistoryRecord
			citationID pgtype.UUID
			plate      pgtype.Text
			vtID       pgtype.UUID
		)
		err := rows.Scan(&citationID, &h.TicketNumber, &h.ApprehendedAt, &plate,
			&vtID, &h.ViolationTypeName, &h.OffenseOrdinal, &h.FineAmount, &h.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		h.CitationID = uuid.UUID(citationID.Bytes)
		h.ViolationTypeID = uuid.UUID(vtID.Bytes)
		if plate.Valid {
			p := plate.String
			h.PlateNumber = &p
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return records, nil
}
