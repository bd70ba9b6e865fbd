package handlers

import (
	"encoding/json"
	"time"

	"github.com/parcelio/fleet-core/internal/mapping"
	"github.com/parcelio/fleet-core/internal/models"
)

// External DTOs. Enum values are translated through the mapping layer and
// keys follow the wire contract's camelCase; every field is mapped
// explicitly rather than shape-guessed.

// StopResponse is the external shape of a trip stop.
type StopResponse struct {
	Sequence int            `json:"sequence"`
	Address  models.Address `json:"address"`
	Status   string         `json:"status"`
}

// TripResponse is the external shape of a trip. Origin and destination
// carry the legacy delimited-string form alongside the structured
// addresses.
type TripResponse struct {
	ID                 string         `json:"id"`
	OrganizationID     string         `json:"organizationId"`
	DriverID           string         `json:"driverId,omitempty"`
	VehicleID          string         `json:"vehicleId,omitempty"`
	Origin             string         `json:"origin"`
	Destination        string         `json:"destination"`
	DepartureAddress   models.Address `json:"departureAddress"`
	DestinationAddress models.Address `json:"destinationAddress"`
	DepartureTime      time.Time      `json:"departureTime"`
	ArrivalTime        time.Time      `json:"arrivalTime"`
	BasePrice          float64        `json:"basePrice"`
	PricePerKg         float64        `json:"pricePerKg"`
	MinimumPrice       float64        `json:"minimumPrice"`
	Currency           string         `json:"currency"`
	TotalCapacity      float64        `json:"totalCapacity"`
	RemainingCapacity  float64        `json:"remainingCapacity"`
	Status             string         `json:"status"`
	CancelReason       string         `json:"cancelReason,omitempty"`
	Stops              []StopResponse `json:"stops,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// TripToResponse maps a trip to its external shape.
func TripToResponse(t *models.Trip) TripResponse {
	resp := TripResponse{
		ID:                 t.ID.Hex(),
		OrganizationID:     t.OrganizationID,
		DriverID:           t.DriverID,
		VehicleID:          t.VehicleID,
		Origin:             t.Departure.Encode(),
		Destination:        t.Destination.Encode(),
		DepartureAddress:   t.Departure,
		DestinationAddress: t.Destination,
		DepartureTime:      t.DepartureTime,
		ArrivalTime:        t.ArrivalTime,
		BasePrice:          t.Pricing.BasePrice,
		PricePerKg:         t.Pricing.PricePerKg,
		MinimumPrice:       t.Pricing.MinimumPrice,
		Currency:           t.Pricing.Currency,
		TotalCapacity:      t.TotalCapacity,
		RemainingCapacity:  t.RemainingCapacity,
		Status:             mapping.TripStatusToExternal(t.Status),
		CancelReason:       t.CancelReason,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	for _, stop := range t.Stops {
		resp.Stops = append(resp.Stops, StopResponse(stop))
	}
	return resp
}

// TripsToResponse maps a trip list to its external shape.
func TripsToResponse(trips []models.Trip) []TripResponse {
	out := make([]TripResponse, 0, len(trips))
	for i := range trips {
		out = append(out, TripToResponse(&trips[i]))
	}
	return out
}

// VehicleResponse is the external shape of a vehicle.
type VehicleResponse struct {
	ID                string    `json:"id"`
	OrganizationID    string    `json:"organizationId"`
	Type              string    `json:"type"`
	Brand             string    `json:"brand"`
	Model             string    `json:"model"`
	LicensePlate      string    `json:"licensePlate"`
	Year              int       `json:"year"`
	CapacityWeightMin float64   `json:"capacityWeightMin"`
	CapacityWeightMax float64   `json:"capacityWeightMax"`
	PackageCapacity   int       `json:"packageCapacity"`
	Status            string    `json:"status"`
	DriverID          string    `json:"driverId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// VehicleToResponse maps a vehicle to its external shape.
func VehicleToResponse(v *models.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                v.ID.Hex(),
		OrganizationID:    v.OrganizationID,
		Type:              mapping.VehicleTypeToExternal(v.Type),
		Brand:             v.Brand,
		Model:             v.Model,
		LicensePlate:      v.LicensePlate,
		Year:              v.Year,
		CapacityWeightMin: v.CapacityWeightMin,
		CapacityWeightMax: v.CapacityWeightMax,
		PackageCapacity:   v.PackageCapacity,
		Status:            v.Status,
		DriverID:          v.DriverID,
		CreatedAt:         v.CreatedAt,
	}
}

// toExternalRecord converts any internal value into a nested record with
// camelCase keys, for aggregate shapes that have no dedicated DTO.
func toExternalRecord(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return mapping.SnakeKeysToCamel(record), nil
}
