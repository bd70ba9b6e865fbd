package db

import (
	"context"

	"github.com/parcelio/fleet-core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// TripCollection defines the interface for trip database operations.
// DecrementRemainingCapacity and AddRemainingCapacity are the two
// operations the capacity ledger depends on being atomic: the check and
// the write happen in a single conditional update at the store, never as
// a read-then-write pair in the caller.
type TripCollection interface {
	InsertTrip(ctx context.Context, trip models.Trip) error
	FindTripByID(ctx context.Context, id string) (*models.Trip, error)
	FindTrips(ctx context.Context, filter bson.M) ([]models.Trip, error)
	UpdateTripFields(ctx context.Context, id string, fields bson.M) error
	AppendStop(ctx context.Context, id string, stop models.Stop) error
	// DecrementRemainingCapacity atomically checks weight <= remaining
	// capacity on an open trip and decrements it. Returns false when no
	// document matched (insufficient capacity, closed trip, or unknown id).
	DecrementRemainingCapacity(ctx context.Context, id string, weight float64) (bool, error)
	// AddRemainingCapacity atomically increments remaining capacity,
	// clamped at total capacity, and returns the pre-update document so
	// the caller can detect a clamp.
	AddRemainingCapacity(ctx context.Context, id string, weight float64) (*models.Trip, error)
	DeleteTrip(ctx context.Context, id string) error
}

// VehicleCollection defines the interface for vehicle database operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error)
	UpdateVehicleFields(ctx context.Context, id string, fields bson.M) error
	DeleteVehicle(ctx context.Context, id string) error
}

// DriverCollection defines the interface for driver database operations.
type DriverCollection interface {
	InsertDriver(ctx context.Context, driver models.Driver) error
	FindDriverByID(ctx context.Context, id string) (*models.Driver, error)
	FindDrivers(ctx context.Context, filter bson.M) ([]models.Driver, error)
	UpdateDriverFields(ctx context.Context, id string, fields bson.M) error
	// ClaimDriverForTrip atomically assigns the driver to a trip if the
	// driver holds no active trip. Returns false when the driver is
	// already assigned or inactive.
	ClaimDriverForTrip(ctx context.Context, driverID, tripID string) (bool, error)
	ReleaseDriverFromTrip(ctx context.Context, driverID, tripID string) error
}

// BookingCollection defines the interface for booking database operations.
type BookingCollection interface {
	InsertBooking(ctx context.Context, booking models.Booking) error
	FindBookingByID(ctx context.Context, id string) (*models.Booking, error)
	FindBookings(ctx context.Context, filter bson.M) ([]models.Booking, error)
	UpdateBookingFields(ctx context.Context, id string, fields bson.M) error
}

// AlertCollection defines the interface for fleet alert records. Alerts are
// written by an external feed; this service only reads them back.
type AlertCollection interface {
	InsertAlert(ctx context.Context, alert models.Alert) error
	FindAlerts(ctx context.Context, filter bson.M) ([]models.Alert, error)
}
