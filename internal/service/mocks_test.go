package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces. Each method is a
// function field. Set only the ones your test needs; unset methods return
// zero values so tests read as "everything else is empty".

type mockDriverRepo struct {
	create         func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	getByLicense   func(ctx context.Context, license string) (domain.Driver, error)
	update         func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	findByName     func(ctx context.Context, first, last string) ([]domain.Driver, error)
	findByLastName func(ctx context.Context, last string) ([]domain.Driver, error)
	directSearch   func(ctx context.Context, term string) ([]domain.Driver, error)
	citationCounts func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

func (m *mockDriverRepo) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	if m.create == nil {
		return d, nil
	}
	return m.create(ctx, d)
}
func (m *mockDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	if m.getByID == nil {
		return domain.Driver{ID: id}, nil
	}
	return m.getByID(ctx, id)
}
func (m *mockDriverRepo) GetByLicense(ctx context.Context, license string) (domain.Driver, error) {
	if m.getByLicense == nil {
		return domain.Driver{}, domain.ErrNotFound
	}
	return m.getByLicense(ctx, license)
}
func (m *mockDriverRepo) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	if m.update == nil {
		return d, nil
	}
	return m.update(ctx, d)
}
func (m *mockDriverRepo) FindByName(ctx context.Context, first, last string) ([]domain.Driver, error) {
	if m.findByName == nil {
		return nil, nil
	}
	return m.findByName(ctx, first, last)
}
func (m *mockDriverRepo) FindByLastName(ctx context.Context, last string) ([]domain.Driver, error) {
	if m.findByLastName == nil {
		return nil, nil
	}
	return m.findByLastName(ctx, last)
}
func (m *mockDriverRepo) DirectSearch(ctx context.Context, term string) ([]domain.Driver, error) {
	if m.directSearch == nil {
		return nil, nil
	}
	return m.directSearch(ctx, term)
}
func (m *mockDriverRepo) CitationCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	if m.citationCounts == nil {
		counts := make(map[uuid.UUID]int, len(ids))
		for _, id := range ids {
			counts[id] = 0
		}
		return counts, nil
	}
	return m.citationCounts(ctx, ids)
}

type mockCitationRepo struct {
	create              func(ctx context.Context, c domain.Citation) (domain.Citation, error)
	getByID             func(ctx context.Context, id uuid.UUID) (domain.Citation, error)
	countPriorByDriver  func(ctx context.Context, driverID, violationTypeID uuid.UUID) (int, error)
	countPriorByVehicle func(ctx context.Context, vehicle string, violationTypeID uuid.UUID) (int, error)
	historyByDriver     func(ctx context.Context, driverID uuid.UUID, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error)
	historyByVehicle    func(ctx context.Context, vehicle string, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error)
	repointDriver       func(ctx context.Context, fromDriverID, toDriverID uuid.UUID) (int64, error)
	softDelete          func(ctx context.Context, id uuid.UUID, reason string) error
}

func (m *mockCitationRepo) Create(ctx context.Context, c domain.Citation) (domain.Citation, error) {
	if m.create == nil {
		c.ID = uuid.New()
		return c, nil
	}
	return m.create(ctx, c)
}
func (m *mockCitationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Citation, error) {
	if m.getByID == nil {
		return domain.Citation{}, domain.ErrNotFound
	}
	return m.getByID(ctx, id)
}
func (m *mockCitationRepo) CountPriorByDriver(ctx context.Context, driverID, violationTypeID uuid.UUID) (int, error) {
	if m.countPriorByDriver == nil {
		return 0, nil
	}
	return m.countPriorByDriver(ctx, driverID, violationTypeID)
}
func (m *mockCitationRepo) CountPriorByVehicle(ctx context.Context, vehicle string, violationTypeID uuid.UUID) (int, error) {
	if m.countPriorByVehicle == nil {
		return 0, nil
	}
	return m.countPriorByVehicle(ctx, vehicle, violationTypeID)
}
func (m *mockCitationRepo) HistoryByDriver(ctx context.Context, driverID uuid.UUID, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error) {
	if m.historyByDriver == nil {
		return nil, nil
	}
	return m.historyByDriver(ctx, driverID, violationTypeID)
}
func (m *mockCitationRepo) HistoryByVehicle(ctx context.Context, vehicle string, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error) {
	if m.historyByVehicle == nil {
		return nil, nil
	}
	return m.historyByVehicle(ctx, vehicle, violationTypeID)
}
func (m *mockCitationRepo) RepointDriver(ctx context.Context, fromDriverID, toDriverID uuid.UUID) (int64, error) {
	if m.repointDriver == nil {
		return 0, nil
	}
	return m.repointDriver(ctx, fromDriverID, toDriverID)
}
func (m *mockCitationRepo) SoftDelete(ctx context.Context, id uuid.UUID, reason string) error {
	if m.softDelete == nil {
		return nil
	}
	return m.softDelete(ctx, id, reason)
}

type mockViolationRepo struct {
	listTypes       func(ctx context.Context) ([]domain.ViolationType, error)
	getTypeByID     func(ctx context.Context, id uuid.UUID) (domain.ViolationType, error)
	createViolation func(ctx context.Context, v domain.CitationViolation) (domain.CitationViolation, error)
	listByCitation  func(ctx context.Context, citationID uuid.UUID) ([]domain.CitationViolation, error)
}

func (m *mockViolationRepo) ListTypes(ctx context.Context) ([]domain.ViolationType, error) {
	if m.listTypes == nil {
		return nil, nil
	}
	return m.listTypes(ctx)
}
func (m *mockViolationRepo) GetTypeByID(ctx context.Context, id uuid.UUID) (domain.ViolationType, error) {
	if m.getTypeByID == nil {
		return domain.ViolationType{}, domain.ErrNotFound
	}
	return m.getTypeByID(ctx, id)
}
func (m *mockViolationRepo) CreateViolation(ctx context.Context, v domain.CitationViolation) (domain.CitationViolation, error) {
	if m.createViolation == nil {
		v.ID = uuid.New()
		return v, nil
	}
	return m.createViolation(ctx, v)
}
func (m *mockViolationRepo) ListByCitation(ctx context.Context, citationID uuid.UUID) ([]domain.CitationViolation, error) {
	if m.listByCitation == nil {
		return nil, nil
	}
	return m.listByCitation(ctx, citationID)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.DriverRepo    = (*mockDriverRepo)(nil)
	_ repo.CitationRepo  = (*mockCitationRepo)(nil)
	_ repo.ViolationRepo = (*mockViolationRepo)(nil)
)

// fakeTransactor runs the callback against the given mocks with no real
// transaction. Rollback semantics are covered by the repo integration tests;
// here the contract under test is "any callback error aborts the merge".
type fakeTransactor struct {
	repos  repo.Repos
	beginE error
}

func (f *fakeTransactor) RunInTx(ctx context.Context, fn func(r repo.Repos) error) error {
	if f.beginE != nil {
		return f.beginE
	}
	return fn(f.repos)
}
