package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle types (internal vocabulary).
const (
	VehicleTruck      = "truck"
	VehicleVan        = "van"
	VehicleMotorcycle = "motorcycle"
	VehicleCar        = "car"
	VehicleBus        = "bus"
	VehicleOther      = "other"
)

// Vehicle statuses.
const (
	VehicleActive      = "active"
	VehicleMaintenance = "maintenance"
	VehicleInactive    = "inactive"
)

// Vehicle represents a physical transport asset owned by an organization.
// Invariant: CapacityWeightMin <= CapacityWeightMax, both within the
// type-specific bounds enforced by mapping.ValidateVehicleCapacity.
type Vehicle struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID    string             `bson:"organization_id" json:"organization_id"`
	Type              string             `bson:"type" json:"type"`
	Brand             string             `bson:"brand" json:"brand"`
	Model             string             `bson:"model" json:"model"`
	LicensePlate      string             `bson:"license_plate" json:"license_plate"`
	Year              int                `bson:"year" json:"year"`
	CapacityWeightMin float64            `bson:"capacity_weight_min" json:"capacity_weight_min"` // in kg
	CapacityWeightMax float64            `bson:"capacity_weight_max" json:"capacity_weight_max"` // in kg
	CapacityVolumeMin float64            `bson:"capacity_volume_min" json:"capacity_volume_min"`
	CapacityVolumeMax float64            `bson:"capacity_volume_max" json:"capacity_volume_max"`
	PackageCapacity   int                `bson:"package_capacity" json:"package_capacity"`
	Status            string             `bson:"status" json:"status"`
	DriverID          string             `bson:"driver_id,omitempty" json:"driver_id,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}
