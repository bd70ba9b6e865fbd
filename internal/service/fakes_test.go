package service

import (
	"context"
	"sync"
	"time"

	"github.com/parcelio/fleet-core/internal/db"
	"github.com/parcelio/fleet-core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store fakes. All mutating operations take the lock so the
// concurrency behaviour of the conditional updates matches the real store.

type fakeTripCollection struct {
	mu        sync.Mutex
	trips     map[string]*models.Trip
	insertErr error
	findErr   error
	updateErr error
}

func newFakeTripCollection(trips ...*models.Trip) *fakeTripCollection {
	f := &fakeTripCollection{trips: make(map[string]*models.Trip)}
	for _, t := range trips {
		f.trips[t.ID.Hex()] = t
	}
	return f
}

func (f *fakeTripCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trips[trip.ID.Hex()] = &trip
	return nil
}

func (f *fakeTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *trip
	return &copied, nil
}

func (f *fakeTripCollection) FindTrips(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Trip
	for _, trip := range f.trips {
		if matchTrip(trip, filter) {
			out = append(out, *trip)
		}
	}
	return out, nil
}

func matchTrip(t *models.Trip, filter bson.M) bool {
	for key, value := range filter {
		switch key {
		case "organization_id":
			if t.OrganizationID != value {
				return false
			}
		case "status":
			if t.Status != value {
				return false
			}
		case "driver_id":
			if t.DriverID != value {
				return false
			}
		case "vehicle_id":
			if t.VehicleID != value {
				return false
			}
		case "departure.city":
			if t.Departure.City != value {
				return false
			}
		case "destination.city":
			if t.Destination.City != value {
				return false
			}
		}
	}
	return true
}

func (f *fakeTripCollection) UpdateTripFields(ctx context.Context, id string, fields bson.M) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[id]
	if !ok {
		return db.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			trip.Status = value.(string)
		case "driver_id":
			trip.DriverID = value.(string)
		case "vehicle_id":
			trip.VehicleID = value.(string)
		case "cancel_reason":
			trip.CancelReason = value.(string)
		case "departure_time":
			trip.DepartureTime = value.(time.Time)
		case "arrival_time":
			trip.ArrivalTime = value.(time.Time)
		case "pricing":
			trip.Pricing = value.(models.Pricing)
		}
	}
	return nil
}

func (f *fakeTripCollection) AppendStop(ctx context.Context, id string, stop models.Stop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[id]
	if !ok {
		return db.ErrNotFound
	}
	trip.Stops = append(trip.Stops, stop)
	return nil
}

func (f *fakeTripCollection) DecrementRemainingCapacity(ctx context.Context, id string, weight float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[id]
	if !ok {
		return false, nil
	}
	if trip.Status == models.TripCancelled || trip.Status == models.TripCompleted {
		return false, nil
	}
	if trip.RemainingCapacity < weight {
		return false, nil
	}
	trip.RemainingCapacity -= weight
	return true, nil
}

func (f *fakeTripCollection) AddRemainingCapacity(ctx context.Context, id string, weight float64) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	before := *trip
	trip.RemainingCapacity += weight
	if trip.RemainingCapacity > trip.TotalCapacity {
		trip.RemainingCapacity = trip.TotalCapacity
	}
	return &before, nil
}

func (f *fakeTripCollection) DeleteTrip(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.trips[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.trips, id)
	return nil
}

func (f *fakeTripCollection) remaining(id string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trips[id].RemainingCapacity
}

type fakeDriverCollection struct {
	mu      sync.Mutex
	drivers map[string]*models.Driver
	findErr error
}

func newFakeDriverCollection(drivers ...*models.Driver) *fakeDriverCollection {
	f := &fakeDriverCollection{drivers: make(map[string]*models.Driver)}
	for _, d := range drivers {
		f.drivers[d.ID.Hex()] = d
	}
	return f
}

func (f *fakeDriverCollection) InsertDriver(ctx context.Context, driver models.Driver) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drivers[driver.ID.Hex()] = &driver
	return nil
}

func (f *fakeDriverCollection) FindDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *driver
	return &copied, nil
}

func (f *fakeDriverCollection) FindDrivers(ctx context.Context, filter bson.M) ([]models.Driver, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Driver
	for _, driver := range f.drivers {
		if org, ok := filter["organization_id"]; ok && driver.OrganizationID != org {
			continue
		}
		out = append(out, *driver)
	}
	return out, nil
}

func (f *fakeDriverCollection) UpdateDriverFields(ctx context.Context, id string, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[id]
	if !ok {
		return db.ErrNotFound
	}
	if status, ok := fields["status"].(string); ok {
		driver.Status = status
	}
	return nil
}

func (f *fakeDriverCollection) ClaimDriverForTrip(ctx context.Context, driverID, tripID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[driverID]
	if !ok {
		return false, nil
	}
	if driver.Status == models.DriverInactive || driver.CurrentTripID != "" {
		return false, nil
	}
	driver.CurrentTripID = tripID
	driver.Status = models.DriverOnTrip
	return true, nil
}

func (f *fakeDriverCollection) ReleaseDriverFromTrip(ctx context.Context, driverID, tripID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[driverID]
	if !ok {
		return db.ErrNotFound
	}
	if driver.CurrentTripID == tripID {
		driver.CurrentTripID = ""
		driver.Status = models.DriverActive
	}
	return nil
}

type fakeBookingCollection struct {
	mu        sync.Mutex
	bookings  map[string]*models.Booking
	insertErr error
}

func newFakeBookingCollection() *fakeBookingCollection {
	return &fakeBookingCollection{bookings: make(map[string]*models.Booking)}
}

func (f *fakeBookingCollection) InsertBooking(ctx context.Context, booking models.Booking) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[booking.ID.Hex()] = &booking
	return nil
}

func (f *fakeBookingCollection) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingCollection) FindBookings(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, booking := range f.bookings {
		out = append(out, *booking)
	}
	return out, nil
}

func (f *fakeBookingCollection) UpdateBookingFields(ctx context.Context, id string, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return db.ErrNotFound
	}
	if status, ok := fields["status"].(string); ok {
		booking.Status = status
	}
	return nil
}

type fakeVehicleCollection struct {
	vehicles []models.Vehicle
	findErr  error
}

func (f *fakeVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	f.vehicles = append(f.vehicles, vehicle)
	return nil
}

func (f *fakeVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	for i := range f.vehicles {
		if f.vehicles[i].ID.Hex() == id {
			copied := f.vehicles[i]
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeVehicleCollection) FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]models.Vehicle, len(f.vehicles))
	copy(out, f.vehicles)
	return out, nil
}

func (f *fakeVehicleCollection) UpdateVehicleFields(ctx context.Context, id string, fields bson.M) error {
	return nil
}

func (f *fakeVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	return nil
}

type fakeAlertCollection struct {
	alerts  []models.Alert
	findErr error
}

func (f *fakeAlertCollection) InsertAlert(ctx context.Context, alert models.Alert) error {
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertCollection) FindAlerts(ctx context.Context, filter bson.M) ([]models.Alert, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]models.Alert, len(f.alerts))
	copy(out, f.alerts)
	return out, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturingPublisher) Publish(topic string, payload map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func adminClaims(orgID string) *models.Claims {
	return &models.Claims{UserID: primitive.NewObjectID().Hex(), Role: models.RoleOrgAdmin, OrganizationID: orgID}
}

func driverClaims(orgID string) *models.Claims {
	return &models.Claims{UserID: primitive.NewObjectID().Hex(), Role: models.RoleOrgDriver, OrganizationID: orgID}
}

func customerClaims() *models.Claims {
	return &models.Claims{UserID: primitive.NewObjectID().Hex(), Role: models.RoleCustomer}
}
