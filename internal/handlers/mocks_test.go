package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/parcelio/fleet-core/internal/middleware"
	"github.com/parcelio/fleet-core/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

// MockTripCollection is a mock implementation of db.TripCollection
type MockTripCollection struct {
	mock.Mock
}

func (m *MockTripCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	args := m.Called(ctx, id)
	if trip := args.Get(0); trip != nil {
		return trip.(*models.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTripCollection) FindTrips(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	args := m.Called(ctx, filter)
	if trips := args.Get(0); trips != nil {
		return trips.([]models.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTripCollection) UpdateTripFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTripCollection) AppendStop(ctx context.Context, id string, stop models.Stop) error {
	args := m.Called(ctx, id, stop)
	return args.Error(0)
}

func (m *MockTripCollection) DecrementRemainingCapacity(ctx context.Context, id string, weight float64) (bool, error) {
	args := m.Called(ctx, id, weight)
	return args.Bool(0), args.Error(1)
}

func (m *MockTripCollection) AddRemainingCapacity(ctx context.Context, id string, weight float64) (*models.Trip, error) {
	args := m.Called(ctx, id, weight)
	if trip := args.Get(0); trip != nil {
		return trip.(*models.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTripCollection) DeleteTrip(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDriverCollection is a mock implementation of db.DriverCollection
type MockDriverCollection struct {
	mock.Mock
}

func (m *MockDriverCollection) InsertDriver(ctx context.Context, driver models.Driver) error {
	args := m.Called(ctx, driver)
	return args.Error(0)
}

func (m *MockDriverCollection) FindDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	args := m.Called(ctx, id)
	if driver := args.Get(0); driver != nil {
		return driver.(*models.Driver), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDriverCollection) FindDrivers(ctx context.Context, filter bson.M) ([]models.Driver, error) {
	args := m.Called(ctx, filter)
	if drivers := args.Get(0); drivers != nil {
		return drivers.([]models.Driver), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDriverCollection) UpdateDriverFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockDriverCollection) ClaimDriverForTrip(ctx context.Context, driverID, tripID string) (bool, error) {
	args := m.Called(ctx, driverID, tripID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriverCollection) ReleaseDriverFromTrip(ctx context.Context, driverID, tripID string) error {
	args := m.Called(ctx, driverID, tripID)
	return args.Error(0)
}

// MockBookingCollection is a mock implementation of db.BookingCollection
type MockBookingCollection struct {
	mock.Mock
}

func (m *MockBookingCollection) InsertBooking(ctx context.Context, booking models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingCollection) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if booking := args.Get(0); booking != nil {
		return booking.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingCollection) FindBookings(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	args := m.Called(ctx, filter)
	if bookings := args.Get(0); bookings != nil {
		return bookings.([]models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingCollection) UpdateBookingFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

// MockVehicleCollection is a mock implementation of db.VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if vehicle := args.Get(0); vehicle != nil {
		return vehicle.(*models.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	args := m.Called(ctx, filter)
	if vehicles := args.Get(0); vehicles != nil {
		return vehicles.([]models.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVehicleCollection) UpdateVehicleFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAlertCollection is a mock implementation of db.AlertCollection
type MockAlertCollection struct {
	mock.Mock
}

func (m *MockAlertCollection) InsertAlert(ctx context.Context, alert models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertCollection) FindAlerts(ctx context.Context, filter bson.M) ([]models.Alert, error) {
	args := m.Called(ctx, filter)
	if alerts := args.Get(0); alerts != nil {
		return alerts.([]models.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

// envelope mirrors the response wrapper for decoding in tests.
type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   *envelopeError         `json:"error"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func withClaims(req *http.Request, claims *models.Claims) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
	return req.WithContext(ctx)
}

func doRequest(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
