package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvillar/traffic-citation/backend/internal/domain"
	"github.com/mvillar/traffic-citation/backend/internal/repo"
	"github.com/mvillar/traffic-citation/backend/internal/service"
)

func speedingType() domain.ViolationType {
	return domain.ViolationType{
		ID:         uuid.New(),
		Name:       "Overspeeding",
		FineFirst:  decimal.NewFromInt(500),
		FineSecond: decimal.NewFromInt(1000),
		FineThird:  decimal.NewFromInt(2000),
	}
}

func validIntake(typeID uuid.UUID) service.CitationIntake {
	return service.CitationIntake{
		TicketNumber:     "TCT-0001",
		ApprehendedAt:    time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		LastName:         "ROSETE",
		FirstName:        "RICHMOND",
		Barangay:         "Poblacion",
		ViolationTypeIDs: []uuid.UUID{typeID},
	}
}

// intakeRepos builds a transactor whose repos echo writes and resolve the
// given violation type with the given prior count.
func intakeRepos(vt domain.ViolationType, priorCount int) (*fakeTransactor, *[]domain.CitationViolation) {
	var recorded []domain.CitationViolation

	violations := &mockViolationRepo{
		getTypeByID: func(_ context.Context, id uuid.UUID) (domain.ViolationType, error) {
			if id != vt.ID {
				return domain.ViolationType{}, domain.ErrNotFound
			}
			return vt, nil
		},
		createViolation: func(_ context.Context, v domain.CitationViolation) (domain.CitationViolation, error) {
			v.ID = uuid.New()
			recorded = append(recorded, v)
			return v, nil
		},
	}
	citations := &mockCitationRepo{
		create: func(_ context.Context, c domain.Citation) (domain.Citation, error) {
			c.ID = uuid.New()
			return c, nil
		},
		countPriorByDriver: func(_ context.Context, _, _ uuid.UUID) (int, error) {
			return priorCount, nil
		},
	}
	drivers := &mockDriverRepo{
		create: func(_ context.Context, d domain.Driver) (domain.Driver, error) {
			d.ID = uuid.New()
			return d, nil
		},
	}

	tx := &fakeTransactor{repos: repo.Repos{Drivers: drivers, Citations: citations, Violations: violations}}
	return tx, &recorded
}

func TestIntakeService_Record_NewDriver(t *testing.T) {
	vt := speedingType()
	tx, recorded := intakeRepos(vt, 0)
	svc := service.NewIntakeService(tx)

	result, err := svc.Record(context.Background(), validIntake(vt.ID))

	require.NoError(t, err)
	assert.Equal(t, "ROSETE", result.Driver.LastName)
	assert.NotEqual(t, uuid.Nil, result.Driver.ID)
	// Snapshot fields copied onto the citation.
	assert.Equal(t, "ROSETE", result.Citation.LastName)
	assert.Equal(t, "Poblacion", result.Citation.Barangay)
	assert.Equal(t, domain.CitationStatusUnpaid, result.Citation.Status)
	require.Len(t, *recorded, 1)
	assert.Equal(t, 1, (*recorded)[0].OffenseOrdinal)
	assert.True(t, vt.FineFirst.Equal((*recorded)[0].FineAmount))
}

func TestIntakeService_Record_EscalatedFine(t *testing.T) {
	vt := speedingType()
	tx, recorded := intakeRepos(vt, 2) // two prior offenses
	svc := service.NewIntakeService(tx)

	_, err := svc.Record(context.Background(), validIntake(vt.ID))

	require.NoError(t, err)
	require.Len(t, *recorded, 1)
	assert.Equal(t, 3, (*recorded)[0].OffenseOrdinal)
	assert.True(t, vt.FineThird.Equal((*recorded)[0].FineAmount))
}

func TestIntakeService_Record_FourthOffenseBillsAtThirdRate(t *testing.T) {
	vt := speedingType()
	tx, recorded := intakeRepos(vt, 3)
	svc := service.NewIntakeService(tx)

	_, err := svc.Record(context.Background(), validIntake(vt.ID))

	require.NoError(t, err)
	require.Len(t, *recorded, 1)
	assert.Equal(t, 3, (*recorded)[0].OffenseOrdinal, "ordinal stays capped at 3")
	assert.True(t, vt.FineThird.Equal((*recorded)[0].FineAmount))
}

func TestIntakeService_Record_ExistingDriverEnriched(t *testing.T) {
	vt := speedingType()
	existingID := uuid.New()
	stored := domain.Driver{
		ID:        existingID,
		LastName:  "ROSETE",
		FirstName: "RICHMOND",
		Barangay:  "Poblacion",
		// DOB and license unknown so far.
	}

	var updated *domain.Driver
	drivers := &mockDriverRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Driver, error) {
			require.Equal(t, existingID, id)
			return stored, nil
		},
		update: func(_ context.Context, d domain.Driver) (domain.Driver, error) {
			updated = &d
			return d, nil
		},
	}
	tx, _ := intakeRepos(vt, 0)
	tx.repos.Drivers = drivers
	svc := service.NewIntakeService(tx)

	in := validIntake(vt.ID)
	in.DriverID = &existingID
	in.DateOfBirth = datep(1999, time.October, 17)
	in.LicenseNumber = strp("N01-23-456789")
	in.Barangay = "San Isidro" // must NOT overwrite the stored barangay

	result, err := svc.Record(context.Background(), in)

	require.NoError(t, err)
	require.NotNil(t, updated, "missing fields in the record must trigger an enrichment update")
	assert.Equal(t, datep(1999, time.October, 17), updated.DateOfBirth)
	require.NotNil(t, updated.LicenseNumber)
	assert.Equal(t, "N01-23-456789", *updated.LicenseNumber)
	assert.Equal(t, "Poblacion", updated.Barangay, "existing values are never overwritten")
	assert.Equal(t, existingID, result.Driver.ID)
}

func TestIntakeService_Record_ExistingDriverNoChangesSkipsUpdate(t *testing.T) {
	vt := speedingType()
	existingID := uuid.New()
	stored := domain.Driver{
		ID:            existingID,
		LastName:      "ROSETE",
		FirstName:     "RICHMOND",
		DateOfBirth:   datep(1999, time.October, 17),
		LicenseNumber: strp("N01-23-456789"),
		Barangay:      "Poblacion",
		Municipality:  "Santa Cruz",
		Province:      "Laguna",
		Zone:          "2",
		MiddleName:    "D",
		Suffix:        "JR",
	}

	drivers := &mockDriverRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Driver, error) { return stored, nil },
		update: func(_ context.Context, _ domain.Driver) (domain.Driver, error) {
			t.Fatal("a fully populated driver must not be updated")
			return domain.Driver{}, nil
		},
	}
	tx, _ := intakeRepos(vt, 0)
	tx.repos.Drivers = drivers
	svc := service.NewIntakeService(tx)

	in := validIntake(vt.ID)
	in.DriverID = &existingID
	in.DateOfBirth = datep(1980, time.January, 1) // differs, but stored value wins

	_, err := svc.Record(context.Background(), in)

	require.NoError(t, err)
}

func TestIntakeService_Record_RepeatedViolationTypesCollapse(t *testing.T) {
	vt := speedingType()
	tx, recorded := intakeRepos(vt, 0)
	svc := service.NewIntakeService(tx)

	in := validIntake(vt.ID)
	in.ViolationTypeIDs = []uuid.UUID{vt.ID, vt.ID}

	_, err := svc.Record(context.Background(), in)

	require.NoError(t, err)
	assert.Len(t, *recorded, 1)
}

func TestIntakeService_Record_Validation(t *testing.T) {
	vt := speedingType()
	tx, _ := intakeRepos(vt, 0)
	svc := service.NewIntakeService(tx)

	cases := map[string]func(*service.CitationIntake){
		"missing ticket number": func(in *service.CitationIntake) { in.TicketNumber = "  " },
		"zero apprehended_at":   func(in *service.CitationIntake) { in.ApprehendedAt = time.Time{} },
		"no violations":         func(in *service.CitationIntake) { in.ViolationTypeIDs = nil },
		"new driver without name": func(in *service.CitationIntake) {
			in.DriverID = nil
			in.FirstName = ""
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validIntake(vt.ID)
			mutate(&in)

			_, err := svc.Record(context.Background(), in)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestIntakeService_Record_UnknownViolationType(t *testing.T) {
	vt := speedingType()
	tx, _ := intakeRepos(vt, 0)
	svc := service.NewIntakeService(tx)

	in := validIntake(uuid.New()) // not the catalog entry

	_, err := svc.Record(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
