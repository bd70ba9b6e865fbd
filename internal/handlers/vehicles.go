package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/db"
	"github.com/parcelio/fleet-core/internal/mapping"
	"github.com/parcelio/fleet-core/internal/middleware"
	"github.com/parcelio/fleet-core/internal/models"
	"github.com/parcelio/fleet-core/internal/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleHandler handles fleet vehicle requests
type VehicleHandler struct {
	vehicles db.VehicleCollection
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// CreateVehicleRequest is the external create-vehicle payload. Type is the
// external token (e.g. "TRUCK").
type CreateVehicleRequest struct {
	Type              string  `json:"type"`
	Brand             string  `json:"brand"`
	Model             string  `json:"model"`
	LicensePlate      string  `json:"licensePlate"`
	Year              int     `json:"year"`
	CapacityWeightMin float64 `json:"capacityWeightMin"`
	CapacityWeightMax float64 `json:"capacityWeightMax"`
	PackageCapacity   int     `json:"packageCapacity"`
}

// Create handles POST /api/vehicles. The capacity validator runs before the
// record reaches persistence.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}
	if claims.Role != models.RoleOrgAdmin {
		util.WriteError(w, apperrors.Forbidden())
		return
	}

	var req CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}

	if req.CapacityWeightMin > req.CapacityWeightMax {
		util.WriteError(w, apperrors.Validation("capacityWeightMin must not exceed capacityWeightMax"))
		return
	}
	if err := mapping.ValidateVehicleCapacity(req.Type, req.CapacityWeightMax, req.PackageCapacity); err != nil {
		util.WriteError(w, apperrors.Validation(err.Error()))
		return
	}
	if err := mapping.ValidateVehicleCapacity(req.Type, req.CapacityWeightMin, req.PackageCapacity); err != nil {
		util.WriteError(w, apperrors.Validation(err.Error()))
		return
	}

	vehicle := models.Vehicle{
		ID:                primitive.NewObjectID(),
		OrganizationID:    claims.OrganizationID,
		Type:              mapping.VehicleTypeToInternal(req.Type),
		Brand:             req.Brand,
		Model:             req.Model,
		LicensePlate:      req.LicensePlate,
		Year:              req.Year,
		CapacityWeightMin: req.CapacityWeightMin,
		CapacityWeightMax: req.CapacityWeightMax,
		PackageCapacity:   req.PackageCapacity,
		Status:            models.VehicleActive,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := h.vehicles.InsertVehicle(r.Context(), vehicle); err != nil {
		util.WriteError(w, apperrors.CreationFailed(err))
		return
	}
	util.WriteJSON(w, http.StatusCreated, VehicleToResponse(&vehicle))
}

// List handles GET /api/vehicles
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	vehicles, err := h.vehicles.FindVehicles(r.Context(), bson.M{"organization_id": claims.OrganizationID})
	if err != nil {
		util.WriteError(w, apperrors.FetchFailed(err))
		return
	}

	out := make([]VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, VehicleToResponse(&vehicles[i]))
	}
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{"vehicles": out})
}

// Get handles GET /api/vehicles/{id}
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			util.WriteError(w, apperrors.NotFound("vehicle"))
			return
		}
		util.WriteError(w, apperrors.FetchFailed(err))
		return
	}
	if vehicle.OrganizationID != claims.OrganizationID {
		util.WriteError(w, apperrors.Forbidden())
		return
	}
	util.WriteJSON(w, http.StatusOK, VehicleToResponse(vehicle))
}

// UpdateStatus handles POST /api/vehicles/{id}/status
func (h *VehicleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}
	if claims.Role != models.RoleOrgAdmin {
		util.WriteError(w, apperrors.Forbidden())
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}
	switch req.Status {
	case models.VehicleActive, models.VehicleMaintenance, models.VehicleInactive:
	default:
		util.WriteError(w, apperrors.Validation("status must be one of: active, maintenance, inactive"))
		return
	}

	if err := h.vehicles.UpdateVehicleFields(r.Context(), r.PathValue("id"), bson.M{"status": req.Status}); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			util.WriteError(w, apperrors.NotFound("vehicle"))
			return
		}
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"message": "vehicle status updated"})
}
