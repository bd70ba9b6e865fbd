package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Driver statuses.
const (
	DriverActive   = "active"
	DriverInactive = "inactive"
	DriverOnTrip   = "on_trip"
)

// Driver represents a person eligible to operate vehicles and be assigned
// to trips. Invariant: a driver is assigned to at most one active trip at
// a time (CurrentTripID).
type Driver struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organization_id" json:"organization_id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone" json:"phone"`
	Status         string             `bson:"status" json:"status"`
	VehicleID      string             `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	CurrentTripID  string             `bson:"current_trip_id,omitempty" json:"current_trip_id,omitempty"`
	CompletedTrips int                `bson:"completed_trips" json:"completed_trips"`
	Rating         float64            `bson:"rating" json:"rating"`
	OnTimeRate     float64            `bson:"on_time_rate" json:"on_time_rate"` // 0-100
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// Available reports whether the driver can take a new trip assignment.
func (d *Driver) Available() bool {
	return d.Status != DriverInactive && d.CurrentTripID == ""
}
