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

// ViolationRepo defines persistence for the violation-type catalog and the
// immutable citation_violations join rows. There is deliberately no update
// path for citation violations: a recorded ordinal is a historical fact.
type ViolationRepo interface {
	// ListTypes returns the full violation-type catalog ordered by name.
	ListTypes(ctx context.Context) ([]domain.ViolationType, error)

	// GetTypeByID retrieves one catalog entry.
	// Returns domain.ErrNotFound if no type with that ID exists.
	GetTypeByID(ctx context.Context, id uuid.UUID) (domain.ViolationType, error)

	// CreateViolation inserts an immutable citation violation row with the
	// resolved ordinal and snapshotted fine amount.
	CreateViolation(ctx context.Context, v domain.CitationViolation) (domain.CitationViolation, error)

	// ListByCitation returns the violations recorded for one citation.
	ListByCitation(ctx context.Context, citationID uuid.UUID) ([]domain.CitationViolation, error)
}

// pgViolationRepo is the Postgres implementation of ViolationRepo.
type pgViolationRepo struct {
	db db
}

// NewViolationRepo constructs a ViolationRepo backed by the provided db connection.
func NewViolationRepo(db db) ViolationRepo {
	return &pgViolationRepo{db: db}
}

// ListTypes returns the catalog ordered by name.
func (r *pgViolationRepo) ListTypes(ctx context.Context) ([]domain.ViolationType, error) {
	const q = `
		SELECT id, name, fine_first, fine_second, fine_third
		FROM violation_types
		ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ViolationRepo.ListTypes: %w", err)
	}
	defer rows.Close()

	var types []domain.ViolationType
	for rows.Next() {
		vt, err := scanViolationType(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ViolationRepo.ListTypes: scan: %w", err)
		}
		types = append(types, vt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ViolationRepo.ListTypes: rows: %w", err)
	}
	return types, nil
}

// GetTypeByID retrieves a violation type by primary key.
func (r *pgViolationRepo) GetTypeByID(ctx context.Context, id uuid.UUID) (domain.ViolationType, error) {
	const q = `
		SELECT id, name, fine_first, fine_second, fine_third
		FROM violation_types
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	vt, err := scanViolationType(row)
	if err != nil {
		return domain.ViolationType{}, fmt.Errorf("repo.ViolationRepo.GetTypeByID: %w", err)
	}
	return vt, nil
}

// CreateViolation inserts the immutable join row.
func (r *pgViolationRepo) CreateViolation(ctx context.Context, v domain.CitationViolation) (domain.CitationViolation, error) {
	const q = `
		INSERT INTO citation_violations (citation_id, violation_type_id, offense_ordinal, fine_amount)
		VALUES (@citation_id, @violation_type_id, @offense_ordinal, @fine_amount)
		RETURNING id, citation_id, violation_type_id, offense_ordinal, fine_amount, created_at`

	args := pgx.NamedArgs{
		"citation_id":       v.CitationID,
		"violation_type_id": v.ViolationTypeID,
		"offense_ordinal":   v.OffenseOrdinal,
		"fine_amount":       v.FineAmount,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanCitationViolation(row)
	if err != nil {
		return domain.CitationViolation{}, fmt.Errorf("repo.ViolationRepo.CreateViolation: %w", err)
	}
	return result, nil
}

// ListByCitation returns the violations recorded for one citation, oldest first.
func (r *pgViolationRepo) ListByCitation(ctx context.Context, citationID uuid.UUID) ([]domain.CitationViolation, error) {
	const q = `
		SELECT id, citation_id, violation_type_id, offense_ordinal, fine_amount, created_at
		FROM citation_violations
		WHERE citation_id = @citation_id
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"citation_id": citationID})
	if err != nil {
		return nil, fmt.Errorf("repo.ViolationRepo.ListByCitation: %w", err)
	}
	defer rows.Close()

	var violations []domain.CitationViolation
	for rows.Next() {
		v, err := scanCitationViolation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ViolationRepo.ListByCitation: scan: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ViolationRepo.ListByCitation: rows: %w", err)
	}
	return violations, nil
}

func scanViolationType(s scanner) (domain.ViolationType, error) {
	var (
		vt domain.ViolationType
		id pgtype.UUID
	)
	err := s.Scan(&id, &vt.Name, &vt.FineFirst, &vt.FineSecond, &vt.FineThird)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ViolationType{}, domain.ErrNotFound
		}
		return domain.ViolationType{}, err
	}
	vt.ID = uuid.UUID(id.Bytes)
	return vt, nil
}

func scanCitationViolation(s scanner) (domain.CitationViolation, error) {
	var (
		v          domain.CitationViolation
		id         pgtype.UUID
		citationID pgtype.UUID
		typeID     pgtype.UUID
	)
	err := s.Scan(&id, &citationID, &typeID, &v.OffenseOrdinal, &v.FineAmount, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CitationViolation{}, domain.ErrNotFound
		}
		return domain.CitationViolation{}, err
	}
	v.ID = uuid.UUID(id.Bytes)
	v.CitationID = uuid.UUID(citationID.Bytes)
	v.ViolationTypeID = uuid.UUID(typeID.Bytes)
	return v, nil
}
