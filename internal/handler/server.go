// Package handler implements the HTTP handlers for the citation API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (match.go, offense.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/metrics"
	"github.com/mvillar/traffic-citation/backend/internal/service"
)

// DuplicateFinder defines the matching operations the handlers depend on.
// Defining interfaces here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type DuplicateFinder interface {
	FindPossibleDuplicates(ctx context.Context, frag domain.IdentityFragment) (domain.MatchResult, error)
	DirectSearch(ctx context.Context, freeText string) (domain.MatchResult, error)
}

// OffenseResolver defines the offense-history operations the handlers depend on.
type OffenseResolver interface {
	ResolveOffenseOrdinal(ctx context.Context, key service.OffenseKey, violationTypeID uuid.UUID) (int, error)
	GetOffenseHistory(ctx context.Context, driverID uuid.UUID, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error)
	GetVehicleOffenseHistory(ctx context.Context, vehicle string, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error)
}

// DriverMerger defines the merge operation the handlers depend on.
type DriverMerger interface {
	MergeDrivers(ctx context.Context, primaryID uuid.UUID, duplicateIDs []uuid.UUID) (domain.MergeResult, error)
}

// CitationRecorder defines citation intake and lifecycle operations.
type CitationRecorder interface {
	Record(ctx context.Context, in service.CitationIntake) (service.IntakeResult, error)
}

// CitationReader defines citation lookup and voiding.
type CitationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (service.IntakeResult, error)
	Void(ctx context.Context, id uuid.UUID, reason string) error
}

// DriverReader defines driver lookups and the violation-type catalog.
type DriverReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	ListViolationTypes(ctx context.Context) ([]domain.ViolationType, error)
}

// Server holds every handler dependency. Wire it in main.go via Routes().
type Server struct {
	matches   DuplicateFinder
	offenses  OffenseResolver
	merges    DriverMerger
	intake    CitationRecorder
	citations CitationReader
	drivers   DriverReader
	metrics   *metrics.Metrics
}

// NewServer constructs the Server with all its dependencies.
// metrics may be nil in tests; handlers treat it as optional.
func NewServer(
	matches DuplicateFinder,
	offenses OffenseResolver,
	merges DriverMerger,
	intake CitationRecorder,
	citations CitationReader,
	drivers DriverReader,
	m *metrics.Metrics,
) *Server {
	return &Server{
		matches:   matches,
		offenses:  offenses,
		merges:    merges,
		intake:    intake,
		citations: citations,
		drivers:   drivers,
		metrics:   m,
	}
}

// Routes returns the router for the full API surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/v1/health", s.Health)

	r.Post("/api/v1/duplicates/search", s.FindDuplicates)
	r.Get("/api/v1/drivers/search", s.SearchDrivers)
	r.Get("/api/v1/drivers/{id}", s.GetDriver)
	r.Get("/api/v1/drivers/{id}/offense-history", s.GetOffenseHistory)
	r.Post("/api/v1/drivers/{id}/merge", s.MergeDrivers)
	r.Get("/api/v1/vehicles/{vehicle}/offense-history", s.GetVehicleOffenseHistory)

	r.Post("/api/v1/citations", s.RecordCitation)
	r.Get("/api/v1/citations/{id}", s.GetCitation)
	r.Post("/api/v1/citations/{id}/void", s.VoidCitation)

	r.Get("/api/v1/violation-types", s.ListViolationTypes)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
