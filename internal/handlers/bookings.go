package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/middleware"
	"github.com/parcelio/fleet-core/internal/service"
	"github.com/parcelio/fleet-core/internal/util"
)

// BookingHandler handles capacity booking requests
type BookingHandler struct {
	trips *service.TripService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(trips *service.TripService) *BookingHandler {
	return &BookingHandler{trips: trips}
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	var req struct {
		TripID   string  `json:"tripId"`
		WeightKg float64 `json:"weightKg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}
	if req.TripID == "" {
		util.WriteError(w, apperrors.Validation("tripId is required"))
		return
	}

	booking, err := h.trips.CreateBooking(r.Context(), claims, req.TripID, req.WeightKg)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	record, err := toExternalRecord(booking)
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}
	util.WriteJSON(w, http.StatusCreated, record)
}

// Cancel handles POST /api/bookings/{id}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	booking, err := h.trips.CancelBooking(r.Context(), claims, r.PathValue("id"))
	if err != nil {
		util.WriteError(w, err)
		return
	}

	record, err := toExternalRecord(booking)
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}
	util.WriteJSON(w, http.StatusOK, record)
}
