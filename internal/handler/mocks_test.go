package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/handler"
	"github.com/mvillar/traffic-citation/backend/internal/service"
)

// Function-field fakes for each handler dependency. Unset fields return
// zero values so tests only wire the calls they assert on.

type fakeMatcher struct {
	find   func(ctx context.Context, frag domain.IdentityFragment) (domain.MatchResult, error)
	direct func(ctx context.Context, freeText string) (domain.MatchResult, error)
}

func (f *fakeMatcher) FindPossibleDuplicates(ctx context.Context, frag domain.IdentityFragment) (domain.MatchResult, error) {
	if f.find == nil {
		return domain.MatchResult{Candidates: []domain.MatchCandidate{}}, nil
	}
	return f.find(ctx, frag)
}

func (f *fakeMatcher) DirectSearch(ctx context.Context, freeText string) (domain.MatchResult, error) {
	if f.direct == nil {
		return domain.MatchResult{Candidates: []domain.MatchCandidate{}, Fallback: true}, nil
	}
	return f.direct(ctx, freeText)
}

type fakeOffenses struct {
	resolve        func(ctx context.Context, key service.OffenseKey, violationTypeID uuid.UUID) (int, error)
	history        func(ctx context.Context, driverID uuid.UUID, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error)
	vehicleHistory func(ctx context.Context, vehicle string, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error)
}

func (f *fakeOffenses) ResolveOffenseOrdinal(ctx context.Context, key service.OffenseKey, violationTypeID uuid.UUID) (int, error) {
	if f.resolve == nil {
		return 1, nil
	}
	return f.resolve(ctx, key, violationTypeID)
}

func (f *fakeOffenses) GetOffenseHistory(ctx context.Context, driverID uuid.UUID, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error) {
	if f.history == nil {
		return []domain.HistoryRecord{}, nil
	}
	return f.history(ctx, driverID, violationTypeID)
}

func (f *fakeOffenses) GetVehicleOffenseHistory(ctx context.Context, vehicle string, violationTypeID *uuid.UUID) ([]domain.HistoryRecord, error) {
	if f.vehicleHistory == nil {
		return []domain.HistoryRecord{}, nil
	}
	return f.vehicleHistory(ctx, vehicle, violationTypeID)
}

type fakeMerger struct {
	merge func(ctx context.Context, primaryID uuid.UUID, duplicateIDs []uuid.UUID) (domain.MergeResult, error)
}

func (f *fakeMerger) MergeDrivers(ctx context.Context, primaryID uuid.UUID, duplicateIDs []uuid.UUID) (domain.MergeResult, error) {
	if f.merge == nil {
		return domain.MergeResult{PrimaryID: primaryID}, nil
	}
	return f.merge(ctx, primaryID, duplicateIDs)
}

type fakeIntake struct {
	record func(ctx context.Context, in service.CitationIntake) (service.IntakeResult, error)
}

func (f *fakeIntake) Record(ctx context.Context, in service.CitationIntake) (service.IntakeResult, error) {
	if f.record == nil {
		return service.IntakeResult{}, nil
	}
	return f.record(ctx, in)
}

type fakeCitations struct {
	get  func(ctx context.Context, id uuid.UUID) (service.IntakeResult, error)
	void func(ctx context.Context, id uuid.UUID, reason string) error
}

func (f *fakeCitations) GetByID(ctx context.Context, id uuid.UUID) (service.IntakeResult, error) {
	if f.get == nil {
		return service.IntakeResult{}, nil
	}
	return f.get(ctx, id)
}

func (f *fakeCitations) Void(ctx context.Context, id uuid.UUID, reason string) error {
	if f.void == nil {
		return nil
	}
	return f.void(ctx, id, reason)
}

type fakeDrivers struct {
	get       func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	listTypes func(ctx context.Context) ([]domain.ViolationType, error)
}

func (f *fakeDrivers) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	if f.get == nil {
		return domain.Driver{ID: id}, nil
	}
	return f.get(ctx, id)
}

func (f *fakeDrivers) ListViolationTypes(ctx context.Context) ([]domain.ViolationType, error) {
	if f.listTypes == nil {
		return []domain.ViolationType{}, nil
	}
	return f.listTypes(ctx)
}

var (
	_ handler.DuplicateFinder  = (*fakeMatcher)(nil)
	_ handler.OffenseResolver  = (*fakeOffenses)(nil)
	_ handler.DriverMerger     = (*fakeMerger)(nil)
	_ handler.CitationRecorder = (*fakeIntake)(nil)
	_ handler.CitationReader   = (*fakeCitations)(nil)
	_ handler.DriverReader     = (*fakeDrivers)(nil)
)

// deps bundles the fakes so tests can override only what they need.
type deps struct {
	matcher   *fakeMatcher
	offenses  *fakeOffenses
	merger    *fakeMerger
	intake    *fakeIntake
	citations *fakeCitations
	drivers   *fakeDrivers
}

func newTestRouter(d deps) http.Handler {
	if d.matcher == nil {
		d.matcher = &fakeMatcher{}
	}
	if d.offenses == nil {
		d.offenses = &fakeOffenses{}
	}
	if d.merger == nil {
		d.merger = &fakeMerger{}
	}
	if d.intake == nil {
		d.intake = &fakeIntake{}
	}
	if d.citations == nil {
		d.citations = &fakeCitations{}
	}
	if d.drivers == nil {
		d.drivers = &fakeDrivers{}
	}
	srv := handler.NewServer(d.matcher, d.offenses, d.merger, d.intake, d.citations, d.drivers, nil)
	return srv.Routes()
}

// doRequest drives the router with an optional JSON body and returns the
// recorded response.
func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals the recorded JSON response into dst.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), "response body: %s", rec.Body.String())
}
