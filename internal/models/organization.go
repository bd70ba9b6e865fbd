package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization types (internal vocabulary).
const (
	OrgFreightForward    = "freight_forward"
	OrgMovingCompany     = "moving_company"
	OrgEcommerce         = "ecommerce"
	OrgCorporate         = "corporate"
	OrgLogisticsProvider = "logistics_provider"
	OrgOther             = "other"
)

// Organization owns fleet and trips. The core consumes its id and type for
// authorization and capacity-constraint lookups; registration is handled
// elsewhere.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type" json:"type"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Verified  bool               `bson:"verified" json:"verified"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
