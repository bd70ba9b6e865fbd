package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking represents a customer's reservation of capacity on a trip.
// Creating a booking atomically decrements the trip's remaining capacity;
// cancelling restores it.
type Booking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TripID     string             `bson:"trip_id" json:"trip_id"`
	CustomerID string             `bson:"customer_id" json:"customer_id"`
	WeightKg   float64            `bson:"weight_kg" json:"weight_kg"`
	Price      float64            `bson:"price" json:"price"`
	Currency   string             `bson:"currency" json:"currency"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
