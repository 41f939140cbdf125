package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/repo"
)

// DriverService implements read operations on driver records.
// Drivers are only ever created or enriched through citation intake and
// relinked through merges; there is no delete.
type DriverService struct {
	drivers    repo.DriverRepo
	violations repo.ViolationRepo
}

// NewDriverService constructs a DriverService backed by the provided repos.
func NewDriverService(drivers repo.DriverRepo, violations repo.ViolationRepo) *DriverService {
	return &DriverService{drivers: drivers, violations: violations}
}

// GetByID returns a single driver by ID.
func (s *DriverService) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	const op = "service.DriverService.GetByID"

	driver, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return domain.Driver{}, storageWrap(op, err)
	}
	return driver, nil
}

// ListViolationTypes returns the violation-type catalog with its fine tiers.
// Always returns a non-nil slice so callers can safely range over it.
func (s *DriverService) ListViolationTypes(ctx context.Context) ([]domain.ViolationType, error) {
	const op = "service.DriverService.ListViolationTypes"

	types, err := s.violations.ListTypes(ctx)
	if err != nil {
		return nil, storageWrap(op, err)
	}
	if types == nil {
		types = []domain.ViolationType{}
	}
	return types, nil
}
