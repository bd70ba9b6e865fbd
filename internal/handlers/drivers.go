package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/db"
	"github.com/parcelio/fleet-core/internal/middleware"
	"github.com/parcelio/fleet-core/internal/models"
	"github.com/parcelio/fleet-core/internal/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverHandler handles fleet driver requests
type DriverHandler struct {
	drivers db.DriverCollection
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(drivers db.DriverCollection) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

// Create handles POST /api/drivers
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
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
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}
	if req.Name == "" {
		util.WriteError(w, apperrors.Validation("name is required"))
		return
	}

	driver := models.Driver{
		ID:             primitive.NewObjectID(),
		OrganizationID: claims.OrganizationID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Status:         models.DriverActive,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := h.drivers.InsertDriver(r.Context(), driver); err != nil {
		util.WriteError(w, apperrors.CreationFailed(err))
		return
	}

	record, err := toExternalRecord(driver)
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}
	util.WriteJSON(w, http.StatusCreated, record)
}

// List handles GET /api/drivers
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	drivers, err := h.drivers.FindDrivers(r.Context(), bson.M{"organization_id": claims.OrganizationID})
	if err != nil {
		util.WriteError(w, apperrors.FetchFailed(err))
		return
	}

	out := make([]map[string]interface{}, 0, len(drivers))
	for i := range drivers {
		record, err := toExternalRecord(&drivers[i])
		if err != nil {
			util.WriteError(w, apperrors.OperationFailed(err))
			return
		}
		out = append(out, record)
	}
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{"drivers": out})
}
