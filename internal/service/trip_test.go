package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperrors.Error with code %s, got %v", code, err)
	}
	assert.Equal(t, code, appErr.Code)
}

func testTrip(orgID, status string, total, remaining float64) *models.Trip {
	now := time.Now()
	return &models.Trip{
		ID:                primitive.NewObjectID(),
		OrganizationID:    orgID,
		Departure:         models.Address{Street: "Hauptstrasse 1", City: "Berlin", Country: "Germany"},
		Destination:       models.Address{Street: "Keizersgracht 44", City: "Amsterdam", Country: "Netherlands"},
		DepartureTime:     now.Add(24 * time.Hour),
		ArrivalTime:       now.Add(36 * time.Hour),
		Pricing:           models.Pricing{BasePrice: 50, PricePerKg: 2, MinimumPrice: 100, Currency: "EUR"},
		TotalCapacity:     total,
		RemainingCapacity: remaining,
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func newTestTripService(trips *fakeTripCollection) (*TripService, *fakeDriverCollection, *fakeBookingCollection, *capturingPublisher) {
	drivers := newFakeDriverCollection()
	bookings := newFakeBookingCollection()
	events := &capturingPublisher{}
	return NewTripService(trips, drivers, bookings, events), drivers, bookings, events
}

func TestCreateTrip(t *testing.T) {
	store := newFakeTripCollection()
	svc, _, _, events := newTestTripService(store)
	now := time.Now()

	trip, err := svc.CreateTrip(context.Background(), adminClaims("org-1"), CreateTripInput{
		Departure:     models.Address{City: "Berlin"},
		Destination:   models.Address{City: "Warsaw"},
		DepartureTime: now.Add(time.Hour),
		ArrivalTime:   now.Add(10 * time.Hour),
		Pricing:       models.Pricing{BasePrice: 30, PricePerKg: 1.5, Currency: "EUR"},
		TotalCapacity: 800,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.TripPlanned, trip.Status)
	assert.Equal(t, "org-1", trip.OrganizationID)
	assert.Equal(t, 800.0, trip.RemainingCapacity)

	stored, err := store.FindTripByID(context.Background(), trip.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, trip.TotalCapacity, stored.TotalCapacity)
	assert.Contains(t, events.topics, "fleet/trips/status")
}

func TestCreateTripForbiddenForNonAdmin(t *testing.T) {
	svc, _, _, _ := newTestTripService(newFakeTripCollection())
	now := time.Now()

	input := CreateTripInput{
		DepartureTime: now.Add(time.Hour),
		ArrivalTime:   now.Add(2 * time.Hour),
		TotalCapacity: 100,
	}

	_, err := svc.CreateTrip(context.Background(), driverClaims("org-1"), input)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = svc.CreateTrip(context.Background(), customerClaims(), input)
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestCreateTripInvalidDates(t *testing.T) {
	svc, _, _, _ := newTestTripService(newFakeTripCollection())
	now := time.Now()

	// Arrival before departure.
	_, err := svc.CreateTrip(context.Background(), adminClaims("org-1"), CreateTripInput{
		DepartureTime: now.Add(10 * time.Hour),
		ArrivalTime:   now.Add(time.Hour),
		TotalCapacity: 100,
	})
	assertCode(t, err, apperrors.CodeInvalidDates)

	// Arrival equal to departure.
	departure := now.Add(time.Hour)
	_, err = svc.CreateTrip(context.Background(), adminClaims("org-1"), CreateTripInput{
		DepartureTime: departure,
		ArrivalTime:   departure,
		TotalCapacity: 100,
	})
	assertCode(t, err, apperrors.CodeInvalidDates)
}

func TestCreateTripInvalidCapacity(t *testing.T) {
	svc, _, _, _ := newTestTripService(newFakeTripCollection())
	now := time.Now()

	_, err := svc.CreateTrip(context.Background(), adminClaims("org-1"), CreateTripInput{
		DepartureTime: now.Add(time.Hour),
		ArrivalTime:   now.Add(2 * time.Hour),
		TotalCapacity: 0.5,
	})
	assertCode(t, err, apperrors.CodeInvalidCapacity)
}

func TestGetTripScoping(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 500, 500)
	svc, _, _, _ := newTestTripService(newFakeTripCollection(trip))

	_, err := svc.GetTrip(context.Background(), adminClaims("org-2"), trip.ID.Hex())
	assertCode(t, err, apperrors.CodeForbidden)

	// Customers book across organizations and are not scoped.
	got, err := svc.GetTrip(context.Background(), customerClaims(), trip.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)

	_, err = svc.GetTrip(context.Background(), adminClaims("org-1"), primitive.NewObjectID().Hex())
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestAssignDriver(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 500, 500)
	svc, drivers, _, _ := newTestTripService(newFakeTripCollection(trip))

	driver := &models.Driver{ID: primitive.NewObjectID(), OrganizationID: "org-1", Status: models.DriverActive}
	_ = drivers.InsertDriver(context.Background(), *driver)

	updated, err := svc.AssignDriver(context.Background(), adminClaims("org-1"), trip.ID.Hex(), driver.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, driver.ID.Hex(), updated.DriverID)

	stored, _ := drivers.FindDriverByID(context.Background(), driver.ID.Hex())
	assert.Equal(t, trip.ID.Hex(), stored.CurrentTripID)
	assert.Equal(t, models.DriverOnTrip, stored.Status)
}

func TestAssignDriverUnavailable(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 500, 500)
	other := testTrip("org-1", models.TripInProgress, 500, 500)
	svc, drivers, _, _ := newTestTripService(newFakeTripCollection(trip, other))

	busy := &models.Driver{
		ID:             primitive.NewObjectID(),
		OrganizationID: "org-1",
		Status:         models.DriverOnTrip,
		CurrentTripID:  other.ID.Hex(),
	}
	_ = drivers.InsertDriver(context.Background(), *busy)

	_, err := svc.AssignDriver(context.Background(), adminClaims("org-1"), trip.ID.Hex(), busy.ID.Hex())
	assertCode(t, err, apperrors.CodeDriverUnavailable)
}

func TestAssignDriverToClosedTrip(t *testing.T) {
	trip := testTrip("org-1", models.TripCancelled, 500, 500)
	svc, drivers, _, _ := newTestTripService(newFakeTripCollection(trip))

	driver := &models.Driver{ID: primitive.NewObjectID(), OrganizationID: "org-1", Status: models.DriverActive}
	_ = drivers.InsertDriver(context.Background(), *driver)

	_, err := svc.AssignDriver(context.Background(), adminClaims("org-1"), trip.ID.Hex(), driver.ID.Hex())
	assertCode(t, err, apperrors.CodeValidationError)
}

func TestAddStopSequenceOrdering(t *testing.T) {
	trip := testTrip("org-1", models.TripPlanned, 500, 500)
	trip.Stops = []models.Stop{{Sequence: 1, Status: "pending"}, {Sequence: 3, Status: "pending"}}
	svc, _, _, _ := newTestTripService(newFakeTripCollection(trip))
	admin := adminClaims("org-1")

	_, err := svc.AddStop(context.Background(), admin, trip.ID.Hex(), models.Stop{Sequence: 0})
	assertCode(t, err, apperrors.CodeValidationError)

	// Sequence 2 is below the existing maximum.
	_, err = svc.AddStop(context.Background(), admin, trip.ID.Hex(), models.Stop{Sequence: 2})
	assertCode(t, err, apperrors.CodeValidationError)

	_, err = svc.AddStop(context.Background(), admin, trip.ID.Hex(), models.Stop{Sequence: 3})
	assertCode(t, err, apperrors.CodeValidationError)

	updated, err := svc.AddStop(context.Background(), admin, trip.ID.Hex(), models.Stop{Sequence: 4, Address: models.Address{City: "Hannover"}})
	assert.NoError(t, err)
	assert.Len(t, updated.Stops, 3)
	assert.Equal(t, "pending", updated.Stops[2].Status)
}

func TestBookCapacity(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 100, 100)
	store := newFakeTripCollection(trip)
	svc, _, _, _ := newTestTripService(store)

	assert.NoError(t, svc.BookCapacity(context.Background(), trip.ID.Hex(), 60))
	assert.Equal(t, 40.0, store.remaining(trip.ID.Hex()))

	err := svc.BookCapacity(context.Background(), trip.ID.Hex(), 60)
	assertCode(t, err, apperrors.CodeCapacityExceeded)
	assert.Equal(t, 40.0, store.remaining(trip.ID.Hex()))
}

func TestBookCapacityRejectsNonPositiveWeight(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 100, 100)
	svc, _, _, _ := newTestTripService(newFakeTripCollection(trip))

	assertCode(t, svc.BookCapacity(context.Background(), trip.ID.Hex(), 0), apperrors.CodeValidationError)
	assertCode(t, svc.BookCapacity(context.Background(), trip.ID.Hex(), -5), apperrors.CodeValidationError)
}

func TestBookCapacityClosedTrips(t *testing.T) {
	cancelled := testTrip("org-1", models.TripCancelled, 100, 100)
	completed := testTrip("org-1", models.TripCompleted, 100, 100)
	svc, _, _, _ := newTestTripService(newFakeTripCollection(cancelled, completed))

	assertCode(t, svc.BookCapacity(context.Background(), cancelled.ID.Hex(), 10), apperrors.CodeTripCancelled)
	assertCode(t, svc.BookCapacity(context.Background(), completed.ID.Hex(), 10), apperrors.CodeValidationError)
	assertCode(t, svc.BookCapacity(context.Background(), primitive.NewObjectID().Hex(), 10), apperrors.CodeNotFound)
}

func TestBookCapacityConcurrentOversell(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 100, 100)
	store := newFakeTripCollection(trip)
	svc, _, _, _ := newTestTripService(store)

	// Two concurrent 60 kg bookings against 100 kg: exactly one may win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.BookCapacity(context.Background(), trip.ID.Hex(), 60)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assertCode(t, err, apperrors.CodeCapacityExceeded)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 40.0, store.remaining(trip.ID.Hex()))
}

func TestReleaseCapacityClamped(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 100, 80)
	store := newFakeTripCollection(trip)
	svc, _, _, _ := newTestTripService(store)

	// Releasing more than was booked clamps at the total instead of
	// overflowing the ledger.
	assert.NoError(t, svc.ReleaseCapacity(context.Background(), trip.ID.Hex(), 50))
	assert.Equal(t, 100.0, store.remaining(trip.ID.Hex()))

	assertCode(t, svc.ReleaseCapacity(context.Background(), primitive.NewObjectID().Hex(), 10), apperrors.CodeNotFound)
}

func TestCreateBookingPricing(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 1000, 1000)
	store := newFakeTripCollection(trip)
	svc, _, _, _ := newTestTripService(store)
	customer := customerClaims()

	// 100 kg at base 50 + 2/kg = 250, above the minimum.
	booking, err := svc.CreateBooking(context.Background(), customer, trip.ID.Hex(), 100)
	assert.NoError(t, err)
	assert.Equal(t, 250.0, booking.Price)
	assert.Equal(t, "EUR", booking.Currency)
	assert.Equal(t, customer.UserID, booking.CustomerID)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.Equal(t, 900.0, store.remaining(trip.ID.Hex()))

	// 10 kg prices at 70, floored to the 100 minimum.
	small, err := svc.CreateBooking(context.Background(), customer, trip.ID.Hex(), 10)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, small.Price)
}

func TestCreateBookingInsertFailureReleasesCapacity(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 500, 500)
	store := newFakeTripCollection(trip)
	drivers := newFakeDriverCollection()
	bookings := newFakeBookingCollection()
	bookings.insertErr = errors.New("write concern failure")
	svc := NewTripService(store, drivers, bookings, nil)

	_, err := svc.CreateBooking(context.Background(), customerClaims(), trip.ID.Hex(), 100)
	assertCode(t, err, apperrors.CodeCreationFailed)
	assert.Equal(t, 500.0, store.remaining(trip.ID.Hex()))
}

func TestCancelBooking(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 500, 500)
	store := newFakeTripCollection(trip)
	svc, _, _, _ := newTestTripService(store)
	customer := customerClaims()

	booking, err := svc.CreateBooking(context.Background(), customer, trip.ID.Hex(), 120)
	assert.NoError(t, err)
	assert.Equal(t, 380.0, store.remaining(trip.ID.Hex()))

	// Another customer may not cancel it.
	_, err = svc.CancelBooking(context.Background(), customerClaims(), booking.ID.Hex())
	assertCode(t, err, apperrors.CodeForbidden)

	cancelled, err := svc.CancelBooking(context.Background(), customer, booking.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Equal(t, 500.0, store.remaining(trip.ID.Hex()))

	_, err = svc.CancelBooking(context.Background(), customer, booking.ID.Hex())
	assertCode(t, err, apperrors.CodeValidationError)
}

func TestUpdateTripTransitions(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 500, 500)
	svc, _, _, _ := newTestTripService(newFakeTripCollection(trip))
	admin := adminClaims("org-1")

	_, err := svc.UpdateTrip(context.Background(), admin, trip.ID.Hex(), UpdateTripInput{Status: models.TripCompleted})
	assertCode(t, err, apperrors.CodeValidationError)

	updated, err := svc.UpdateTrip(context.Background(), admin, trip.ID.Hex(), UpdateTripInput{Status: models.TripInProgress})
	assert.NoError(t, err)
	assert.Equal(t, models.TripInProgress, updated.Status)
}

func TestUpdateTripDateValidation(t *testing.T) {
	trip := testTrip("org-1", models.TripScheduled, 500, 500)
	svc, _, _, _ := newTestTripService(newFakeTripCollection(trip))
	admin := adminClaims("org-1")

	// Moving departure past the stored arrival is rejected.
	late := trip.ArrivalTime.Add(time.Hour)
	_, err := svc.UpdateTrip(context.Background(), admin, trip.ID.Hex(), UpdateTripInput{DepartureTime: &late})
	assertCode(t, err, apperrors.CodeInvalidDates)

	newArrival := trip.ArrivalTime.Add(5 * time.Hour)
	updated, err := svc.UpdateTrip(context.Background(), admin, trip.ID.Hex(), UpdateTripInput{ArrivalTime: &newArrival})
	assert.NoError(t, err)
	assert.True(t, updated.ArrivalTime.Equal(newArrival))
}

func TestBulkUpdateStatusPerTripOutcomes(t *testing.T) {
	t1 := testTrip("org-1", models.TripScheduled, 500, 500)
	t2 := testTrip("org-1", models.TripCompleted, 500, 500)
	svc, _, _, _ := newTestTripService(newFakeTripCollection(t1, t2))
	missing := primitive.NewObjectID().Hex()

	results, err := svc.BulkUpdateStatus(context.Background(), adminClaims("org-1"),
		[]string{t1.ID.Hex(), t2.ID.Hex(), missing}, "cancel")
	assert.NoError(t, err)
	assert.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.Equal(t, models.TripCancelled, results[0].Status)

	// Completed is terminal, the transition is refused.
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)

	assert.False(t, results[2].Success)
	assert.Equal(t, missing, results[2].TripID)
}

func TestBulkUpdateStatusUnknownAction(t *testing.T) {
	svc, _, _, _ := newTestTripService(newFakeTripCollection())
	_, err := svc.BulkUpdateStatus(context.Background(), adminClaims("org-1"), []string{"abc"}, "explode")
	assertCode(t, err, apperrors.CodeValidationError)
}

func TestCancelTripReleasesDriver(t *testing.T) {
	trip := testTrip("org-1", models.TripInProgress, 500, 500)
	store := newFakeTripCollection(trip)
	svc, drivers, _, events := newTestTripService(store)

	driver := &models.Driver{ID: primitive.NewObjectID(), OrganizationID: "org-1", Status: models.DriverActive}
	_ = drivers.InsertDriver(context.Background(), *driver)
	_, err := svc.AssignDriver(context.Background(), adminClaims("org-1"), trip.ID.Hex(), driver.ID.Hex())
	assert.NoError(t, err)

	cancelled, err := svc.CancelTrip(context.Background(), adminClaims("org-1"), trip.ID.Hex(), "vehicle breakdown")
	assert.NoError(t, err)
	assert.Equal(t, models.TripCancelled, cancelled.Status)
	assert.Equal(t, "vehicle breakdown", cancelled.CancelReason)

	released, _ := drivers.FindDriverByID(context.Background(), driver.ID.Hex())
	assert.Empty(t, released.CurrentTripID)
	assert.Equal(t, models.DriverActive, released.Status)
	assert.Contains(t, events.topics, "fleet/trips/status")
}

func TestArchiveTrip(t *testing.T) {
	open := testTrip("org-1", models.TripScheduled, 500, 500)
	done := testTrip("org-1", models.TripCompleted, 500, 500)
	store := newFakeTripCollection(open, done)
	svc, _, _, _ := newTestTripService(store)
	admin := adminClaims("org-1")

	assertCode(t, svc.ArchiveTrip(context.Background(), admin, open.ID.Hex()), apperrors.CodeValidationError)

	assert.NoError(t, svc.ArchiveTrip(context.Background(), admin, done.ID.Hex()))
	_, err := store.FindTripByID(context.Background(), done.ID.Hex())
	assert.Error(t, err)
}

func TestListTripsScopedToOrganization(t *testing.T) {
	mine := testTrip("org-1", models.TripScheduled, 500, 500)
	other := testTrip("org-2", models.TripScheduled, 500, 500)
	svc, _, _, _ := newTestTripService(newFakeTripCollection(mine, other))

	trips, err := svc.ListTrips(context.Background(), adminClaims("org-1"), nil)
	assert.NoError(t, err)
	assert.Len(t, trips, 1)
	assert.Equal(t, mine.ID, trips[0].ID)
}
