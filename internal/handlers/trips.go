package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/mapping"
	"github.com/parcelio/fleet-core/internal/middleware"
	"github.com/parcelio/fleet-core/internal/models"
	"github.com/parcelio/fleet-core/internal/service"
	"github.com/parcelio/fleet-core/internal/util"
	"go.mongodb.org/mongo-driver/bson"
)

// TripHandler handles trip lifecycle requests
type TripHandler struct {
	trips *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(trips *service.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// CreateTripRequest is the external create-trip payload.
type CreateTripRequest struct {
	VehicleID     string         `json:"vehicleId"`
	Departure     models.Address `json:"departure"`
	Destination   models.Address `json:"destination"`
	Origin        string         `json:"origin,omitempty"`
	DestinationS  string         `json:"destinationAddress,omitempty"`
	DepartureTime time.Time      `json:"departureTime"`
	ArrivalTime   time.Time      `json:"arrivalTime"`
	BasePrice     float64        `json:"basePrice"`
	PricePerKg    float64        `json:"pricePerKg"`
	MinimumPrice  float64        `json:"minimumPrice"`
	Currency      string         `json:"currency"`
	TotalCapacity float64        `json:"totalCapacity"`
}

// Create handles POST /api/trips
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}

	// Legacy callers may still send delimited origin/destination strings.
	departure := req.Departure
	if departure == (models.Address{}) && req.Origin != "" {
		departure = models.DecodeAddress(req.Origin)
	}
	destination := req.Destination
	if destination == (models.Address{}) && req.DestinationS != "" {
		destination = models.DecodeAddress(req.DestinationS)
	}

	trip, err := h.trips.CreateTrip(r.Context(), claims, service.CreateTripInput{
		VehicleID:     req.VehicleID,
		Departure:     departure,
		Destination:   destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Pricing: models.Pricing{
			BasePrice:    req.BasePrice,
			PricePerKg:   req.PricePerKg,
			MinimumPrice: req.MinimumPrice,
			Currency:     req.Currency,
		},
		TotalCapacity: req.TotalCapacity,
	})
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, TripToResponse(trip))
}

// Get handles GET /api/trips/{id}
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	trip, err := h.trips.GetTrip(r.Context(), claims, r.PathValue("id"))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, TripToResponse(trip))
}

// List handles GET /api/trips
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	query, err := ParseTripQuery(r)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	filter := bson.M{}
	if query.Status != "" {
		filter["status"] = query.Status
	}
	if query.DriverID != "" {
		filter["driver_id"] = query.DriverID
	}
	if query.VehicleID != "" {
		filter["vehicle_id"] = query.VehicleID
	}
	if query.DepartureCity != "" {
		filter["departure.city"] = query.DepartureCity
	}
	if query.DestinationCity != "" {
		filter["destination.city"] = query.DestinationCity
	}

	trips, err := h.trips.ListTrips(r.Context(), claims, filter)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	service.SortTrips(trips, query.SortBy, query.SortOrder)
	page, pagination := service.PaginateTrips(trips, query.Page, query.Limit)

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trips":      TripsToResponse(page),
		"pagination": pagination,
	})
}

// Update handles PATCH /api/trips/{id}. The body is a partial camelCase
// record; keys are converted to the internal casing before decoding, and an
// external status value is mapped to the internal vocabulary.
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	var record map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}
	record = mapping.CamelKeysToSnake(record)
	if status, ok := record["status"].(string); ok {
		if !mapping.IsExternalTripStatus(status) {
			util.WriteError(w, apperrors.Validation("unknown trip status: "+status))
			return
		}
		record["status"] = mapping.TripStatusToInternal(status)
	}

	data, err := json.Marshal(record)
	if err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}
	var input service.UpdateTripInput
	if err := json.Unmarshal(data, &input); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}

	trip, err := h.trips.UpdateTrip(r.Context(), claims, r.PathValue("id"), input)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, TripToResponse(trip))
}

// BulkUpdateRequest is the external bulk status update payload.
type BulkUpdateRequest struct {
	TripIDs []string `json:"tripIds"`
	Action  string   `json:"action"`
}

// BulkUpdate handles POST /api/trips/bulk
func (h *TripHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	var req BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}
	if len(req.TripIDs) == 0 {
		util.WriteError(w, apperrors.Validation("tripIds must not be empty"))
		return
	}

	results, err := h.trips.BulkUpdateStatus(r.Context(), claims, req.TripIDs, req.Action)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// AssignDriver handles POST /api/trips/{id}/assign
func (h *TripHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	var req struct {
		DriverID string `json:"driverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DriverID == "" {
		util.WriteError(w, apperrors.Validation("driverId is required"))
		return
	}

	trip, err := h.trips.AssignDriver(r.Context(), claims, r.PathValue("id"), req.DriverID)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, TripToResponse(trip))
}

// AddStop handles POST /api/trips/{id}/stops
func (h *TripHandler) AddStop(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	var req struct {
		Sequence int            `json:"sequence"`
		Address  models.Address `json:"address"`
		Status   string         `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}

	trip, err := h.trips.AddStop(r.Context(), claims, r.PathValue("id"), models.Stop{
		Sequence: req.Sequence,
		Address:  req.Address,
		Status:   req.Status,
	})
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, TripToResponse(trip))
}

// Cancel handles POST /api/trips/{id}/cancel
func (h *TripHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body is a valid cancellation without a reason.
	_ = json.NewDecoder(r.Body).Decode(&req)

	trip, err := h.trips.CancelTrip(r.Context(), claims, r.PathValue("id"), req.Reason)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, TripToResponse(trip))
}

// Archive handles DELETE /api/trips/{id}
func (h *TripHandler) Archive(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	if err := h.trips.ArchiveTrip(r.Context(), claims, r.PathValue("id")); err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"message": "trip archived"})
}
