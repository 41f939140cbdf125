package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/repo"
)

// Transactor runs a callback inside a single all-or-nothing transaction.
// Defined here (in the consumer package) so merge tests can inject a fake
// that never touches Postgres; production wiring passes repo.NewTransactor.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(r repo.Repos) error) error
}

// MergeService consolidates duplicate driver records by repointing their
// citations at a chosen primary driver. Duplicate driver rows are never
// deleted: citation snapshots already preserve historical identity, and the
// rows may still be referenced by future identity resolution.
//
// Concurrent merges over overlapping duplicate sets are not guarded against
// at this layer; each call is a single transaction and nothing more.
type MergeService struct {
	drivers repo.DriverRepo
	tx      Transactor
}

// NewMergeService constructs a MergeService.
func NewMergeService(drivers repo.DriverRepo, tx Transactor) *MergeService {
	return &MergeService{drivers: drivers, tx: tx}
}

// MergeDrivers repoints every citation owned by any of duplicateIDs to
// primaryID, in one transaction. A failure partway through rolls back every
// repoint already applied, leaving the pre-merge state intact.
//
// A duplicate ID equal to the primary is a self-merge: silently skipped per
// ID and reported in MergeResult.SkippedIDs rather than failing the batch.
// An empty duplicate list is domain.ErrValidation; an unknown primary is
// domain.ErrNotFound.
func (s *MergeService) MergeDrivers(ctx context.Context, primaryID uuid.UUID, duplicateIDs []uuid.UUID) (domain.MergeResult, error) {
	const op = "service.MergeService.MergeDrivers"

	if primaryID == uuid.Nil {
		return domain.MergeResult{}, fmt.Errorf("%s: %w: primary driver id is required", op, domain.ErrValidation)
	}
	if len(duplicateIDs) == 0 {
		return domain.MergeResult{}, fmt.Errorf("%s: %w: duplicate driver ids are required", op, domain.ErrValidation)
	}

	if _, err := s.drivers.GetByID(ctx, primaryID); err != nil {
		return domain.MergeResult{}, storageWrap(op, err)
	}

	result := domain.MergeResult{PrimaryID: primaryID}

	// Partition the batch: self-merges are skipped per ID, repeats collapse.
	seen := make(map[uuid.UUID]bool, len(duplicateIDs))
	var work []uuid.UUID
	for _, id := range duplicateIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if id == primaryID {
			result.SkippedIDs = append(result.SkippedIDs, id)
			continue
		}
		work = append(work, id)
	}

	if len(work) == 0 {
		// Every ID was a self-merge: a successful no-op.
		return result, nil
	}

	err := s.tx.RunInTx(ctx, func(r repo.Repos) error {
		for _, dupID := range work {
			moved, err := r.Citations.RepointDriver(ctx, dupID, primaryID)
			if err != nil {
				return err
			}
			result.CitationsRepointed += moved
		}
		return nil
	})
	if err != nil {
		return domain.MergeResult{}, storageWrap(op, err)
	}

	result.MergedIDs = work
	return result, nil
}
