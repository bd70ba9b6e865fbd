package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trip statuses (internal vocabulary). The external API exposes
// "active" where the internal value is "in_progress"; the mapping
// package owns that translation.
const (
	TripPlanned    = "planned"
	TripScheduled  = "scheduled"
	TripInProgress = "in_progress"
	TripCompleted  = "completed"
	TripCancelled  = "cancelled"
	TripDelayed    = "delayed"
)

// Pricing describes how bookings against a trip are priced.
type Pricing struct {
	BasePrice    float64 `bson:"base_price" json:"base_price"`
	PricePerKg   float64 `bson:"price_per_kg" json:"price_per_kg"`
	MinimumPrice float64 `bson:"minimum_price" json:"minimum_price"`
	Currency     string  `bson:"currency" json:"currency"`
}

// Stop is an ordered intermediate stop on a trip. Sequence values are
// unique and strictly increasing; a stop carries its own status distinct
// from the parent trip's.
type Stop struct {
	Sequence int     `bson:"sequence" json:"sequence"`
	Address  Address `bson:"address" json:"address"`
	Status   string  `bson:"status" json:"status"` // "pending", "arrived", "departed", "skipped"
}

// Trip represents a scheduled transport leg between two locations.
// Invariant: 0 <= RemainingCapacity <= TotalCapacity at all times.
type Trip struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID    string             `bson:"organization_id" json:"organization_id"`
	DriverID          string             `bson:"driver_id,omitempty" json:"driver_id,omitempty"`
	VehicleID         string             `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	Departure         Address            `bson:"departure" json:"departure"`
	Destination       Address            `bson:"destination" json:"destination"`
	DepartureTime     time.Time          `bson:"departure_time" json:"departure_time"`
	ArrivalTime       time.Time          `bson:"arrival_time" json:"arrival_time"`
	Pricing           Pricing            `bson:"pricing" json:"pricing"`
	TotalCapacity     float64            `bson:"total_capacity" json:"total_capacity"`         // in kg
	RemainingCapacity float64            `bson:"remaining_capacity" json:"remaining_capacity"` // in kg
	Status            string             `bson:"status" json:"status"`
	Stops             []Stop             `bson:"stops,omitempty" json:"stops,omitempty"`
	CancelReason      string             `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// BookedWeight returns the capacity already consumed by bookings.
func (t *Trip) BookedWeight() float64 {
	return t.TotalCapacity - t.RemainingCapacity
}

// Revenue returns the booking revenue attributable to the trip: the priced
// value of the booked weight, floored at the minimum price once anything
// has been booked.
func (t *Trip) Revenue() float64 {
	booked := t.BookedWeight()
	if booked <= 0 {
		return 0
	}
	revenue := t.Pricing.BasePrice + booked*t.Pricing.PricePerKg
	if revenue < t.Pricing.MinimumPrice {
		revenue = t.Pricing.MinimumPrice
	}
	return revenue
}

// Bookable reports whether the trip still accepts capacity bookings.
func (t *Trip) Bookable() bool {
	switch t.Status {
	case TripCompleted, TripCancelled:
		return false
	default:
		return true
	}
}
