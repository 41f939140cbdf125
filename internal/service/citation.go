package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/repo"
)

// CitationService implements lookups and voiding for recorded citations.
type CitationService struct {
	citations  repo.CitationRepo
	violations repo.ViolationRepo
}

// NewCitationService constructs a CitationService backed by the provided repos.
func NewCitationService(citations repo.CitationRepo, violations repo.ViolationRepo) *CitationService {
	return &CitationService{citations: citations, violations: violations}
}

// GetByID returns a citation with its recorded violations.
func (s *CitationService) GetByID(ctx context.Context, id uuid.UUID) (IntakeResult, error) {
	const op = "service.CitationService.GetByID"

	citation, err := s.citations.GetByID(ctx, id)
	if err != nil {
		return IntakeResult{}, storageWrap(op, err)
	}

	violations, err := s.violations.ListByCitation(ctx, id)
	if err != nil {
		return IntakeResult{}, storageWrap(op, err)
	}

	return IntakeResult{Citation: citation, Violations: violations}, nil
}

// Void soft-deletes a citation with a reason. Citations are never hard-deleted;
// the row keeps its snapshot fields and drops out of offense counting.
// Returns domain.ErrNotFound if the citation does not exist or is already voided.
func (s *CitationService) Void(ctx context.Context, id uuid.UUID, reason string) error {
	const op = "service.CitationService.Void"

	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%s: %w: a void reason is required", op, domain.ErrValidation)
	}
	if err := s.citations.SoftDelete(ctx, id, strings.TrimSpace(reason)); err != nil {
		return storageWrap(op, err)
	}
	return nil
}
