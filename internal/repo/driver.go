// Package repo contains all database access logic for the citation system.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, and lets the
// merge transactor hand repos a pgx.Tx for all-or-nothing batches.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// candidateLimit caps every candidate query. Duplicate lookups are interactive
// (fired as the officer types), so a bounded result set matters more than
// completeness past the first page.
const candidateLimit = 50

// DriverRepo defines the persistence operations for Drivers.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the services to be unit-tested with a mock.
type DriverRepo interface {
	// Create inserts a new driver and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, d domain.Driver) (domain.Driver, error)

	// GetByID retrieves a single driver by its UUID primary key.
	// Returns domain.ErrNotFound if no driver with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)

	// GetByLicense retrieves the driver holding the given license number.
	// Returns domain.ErrNotFound if no driver carries that license.
	GetByLicense(ctx context.Context, license string) (domain.Driver, error)

	// Update overwrites the mutable fields of an existing driver and returns
	// the updated record. Returns domain.ErrNotFound if the ID does not exist.
	Update(ctx context.Context, d domain.Driver) (domain.Driver, error)

	// FindByName returns drivers whose first and last names both match
	// case-insensitively.
	FindByName(ctx context.Context, first, last string) ([]domain.Driver, error)

	// FindByLastName returns drivers whose last name matches case-insensitively.
	// Used for single-token searches where no first name is available.
	FindByLastName(ctx context.Context, last string) ([]domain.Driver, error)

	// DirectSearch runs a substring search across name, license, and the
	// vehicle identifiers (plate or engine-chassis) of the driver's
	// citations. This is the lower-trust fallback when structured matching
	// yields nothing.
	DirectSearch(ctx context.Context, term string) ([]domain.Driver, error)

	// CitationCounts returns the total historical citation count per driver ID.
	// IDs with no citations are present in the map with a zero count.
	CitationCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

// pgDriverRepo is the Postgres implementation of DriverRepo.
type pgDriverRepo struct {
	db db
}

// NewDriverRepo constructs a DriverRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewDriverRepo(db db) DriverRepo {
	return &pgDriverRepo{db: db}
}

const driverColumns = `id, last_name, first_name, middle_name, suffix, date_of_birth,
		license_number, barangay, municipality, province, zone, created_at, updated_at`

// Create inserts a new driver row and returns the full persisted record.
func (r *pgDriverRepo) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	const q = `
		INSERT INTO drivers (last_name, first_name, middle_name, suffix, date_of_birth,
		                     license_number, barangay, municipality, province, zone)
		VALUES (@last_name, @first_name, @middle_name, @suffix, @date_of_birth,
		        @license_number, @barangay, @municipality, @province, @zone)
		RETURNING ` + driverColumns

	row := r.db.QueryRow(ctx, q, driverArgs(d))
	result, err := scanDriver(row)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a driver by primary key.
func (r *pgDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanDriver(row)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByLicense retrieves a driver by exact license number.
func (r *pgDriverRepo) GetByLicense(ctx context.Context, license string) (domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers WHERE license_number = @license`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"license": license})
	result, err := scanDriver(row)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByLicense: %w", err)
	}
	return result, nil
}

// Update overwrites the mutable fields of a driver and returns the updated record.
func (r *pgDriverRepo) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	const q = `
		UPDATE drivers
		SET last_name      = @last_name,
		    first_name     = @first_name,
		    middle_name    = @middle_name,
		    suffix         = @suffix,
		    date_of_birth  = @date_of_birth,
		    license_number = @license_number,
		    barangay       = @barangay,
		    municipality   = @municipality,
		    province       = @province,
		    zone           = @zone,
		    updated_at     = now()
		WHERE id = @id
		RETURNING ` + driverColumns

	args := driverArgs(d)
	args["id"] = d.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanDriver(row)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Update: %w", err)
	}
	return result, nil
}

// FindByName returns drivers matching first+last case-insensitively.
// No ORDER BY: the service ranks candidates after tie-break counts are
// attached.
func (r *pgDriverRepo) FindByName(ctx context.Context, first, last string) ([]domain.Driver, error) {
	const q = `
		SELECT ` + driverColumns + `
		FROM drivers
		WHERE lower(first_name) = lower(@first) AND lower(last_name) = lower(@last)
		LIMIT @lim`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"first": first, "last": last, "lim": candidateLimit})
	if err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.FindByName: %w", err)
	}
	return collectDrivers(rows, "repo.DriverRepo.FindByName")
}

// FindByLastName returns drivers matching the last name case-insensitively.
func (r *pgDriverRepo) FindByLastName(ctx context.Context, last string) ([]domain.Driver, error) {
	const q = `
		SELECT ` + driverColumns + `
		FROM drivers
		WHERE lower(last_name) = lower(@last)
		LIMIT @lim`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"last": last, "lim": candidateLimit})
	if err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.FindByLastName: %w", err)
	}
	return collectDrivers(rows, "repo.DriverRepo.FindByLastName")
}

// DirectSearch runs the fallback substring search. The term is passed as a
// parameter and wrapped with wildcards server-side, so no query text is ever
// built from user input.
func (r *pgDriverRepo) DirectSearch(ctx context.Context, term string) ([]domain.Driver, error) {
	const q = `
		SELECT DISTINCT ` + driverColumns + `
		FROM drivers d
		LEFT JOIN citations c ON c.driver_id = d.id AND c.deleted_at IS NULL
		WHERE d.last_name ILIKE '%' || @term || '%'
		   OR d.first_name ILIKE '%' || @term || '%'
		   OR d.license_number ILIKE '%' || @term || '%'
		   OR c.plate_number ILIKE '%' || @term || '%'
		   OR c.engine_chassis_number ILIKE '%' || @term || '%'
		LIMIT @lim`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"term": term, "lim": candidateLimit})
	if err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.DirectSearch: %w", err)
	}
	return collectDrivers(rows, "repo.DriverRepo.DirectSearch")
}

// CitationCounts returns total historical citation counts for the given ids.
// Soft-deleted citations still count toward "established record" weight;
// the tie-break cares about record history, not billable offenses.
func (r *pgDriverRepo) CitationCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	for _, id := range ids {
		counts[id] = 0
	}

	const q = `
		SELECT driver_id, count(*)
		FROM citations
		WHERE driver_id = ANY(@ids)
		GROUP BY driver_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.CitationCounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id pgtype.UUID
			n  int64
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("repo.DriverRepo.CitationCounts: scan: %w", err)
		}
		counts[uuid.UUID(id.Bytes)] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.CitationCounts: rows: %w", err)
	}
	return counts, nil
}

// driverArgs maps the insert/update parameters for a driver row.
func driverArgs(d domain.Driver) pgx.NamedArgs {
	return pgx.NamedArgs{
		"last_name":      d.LastName,
		"first_name":     d.FirstName,
		"middle_name":    d.MiddleName,
		"suffix":         d.Suffix,
		"date_of_birth":  d.DateOfBirth, // nil becomes NULL
		"license_number": d.LicenseNumber,
		"barangay":       d.Barangay,
		"municipality":   d.Municipality,
		"province":       d.Province,
		"zone":           d.Zone,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanDriver maps a single database row into a domain.Driver.
// It handles the UUID and nullable date_of_birth / license_number conversions.
func scanDriver(s scanner) (domain.Driver, error) {
	var (
		d       domain.Driver
		id      pgtype.UUID
		dob     pgtype.Date
		license pgtype.Text
	)

	err := s.Scan(&id, &d.LastName, &d.FirstName, &d.MiddleName, &d.Suffix, &dob,
		&license, &d.Barangay, &d.Municipality, &d.Province, &d.Zone,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Driver{}, domain.ErrNotFound
		}
		return domain.Driver{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	if dob.Valid {
		t := dob.Time
		d.DateOfBirth = &t
	}
	if license.Valid {
		l := license.String
		d.LicenseNumber = &l
	}
	return d, nil
}

// collectDrivers drains rows into a slice, closing them when done.
func collectDrivers(rows pgx.Rows, op string) ([]domain.Driver, error) {
	defer rows.Close()

	var drivers []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return drivers, nil
}
