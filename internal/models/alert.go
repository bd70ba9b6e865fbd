package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert kinds fed by the fleet monitoring collaborator.
const (
	AlertMaintenanceDue   = "maintenance_due"
	AlertDocumentExpiring = "document_expiring"
	AlertInspectionDue    = "inspection_due"
)

// Alert is a structurally independent fleet notification record. It is not
// derived from vehicle or driver state by this service; an external feed
// writes them and the dashboard reads them back.
type Alert struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organization_id" json:"organization_id"`
	VehicleID      string             `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	DriverID       string             `bson:"driver_id,omitempty" json:"driver_id,omitempty"`
	Kind           string             `bson:"kind" json:"kind"`
	Severity       string             `bson:"severity" json:"severity"` // "info", "warning", "critical"
	Message        string             `bson:"message" json:"message"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
