package handlers

import (
	"net/http"
	"strconv"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/middleware"
	"github.com/parcelio/fleet-core/internal/service"
	"github.com/parcelio/fleet-core/internal/util"
)

// FleetHandler handles fleet overview requests
type FleetHandler struct {
	fleet *service.FleetService
}

// NewFleetHandler creates a new fleet handler
func NewFleetHandler(fleet *service.FleetService) *FleetHandler {
	return &FleetHandler{fleet: fleet}
}

// Overview handles GET /api/fleet/overview. Read access: any organization
// member with the view_fleet permission.
func (h *FleetHandler) Overview(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}
	if !claims.HasPermission("view_fleet") {
		util.WriteError(w, apperrors.Forbidden())
		return
	}

	q := r.URL.Query()
	var details []apperrors.FieldError
	query := service.DashboardQuery{
		Status:    q.Get("status"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Page:      1,
		Limit:     service.DefaultLimit,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			details = append(details, apperrors.FieldError{Field: "page", Message: "must be a positive integer"})
		} else {
			query.Page = page
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxLimit {
			details = append(details, apperrors.FieldError{Field: "limit", Message: "must be an integer between 1 and 100"})
		} else {
			query.Limit = limit
		}
	}
	if query.SortOrder != "" && query.SortOrder != "asc" && query.SortOrder != "desc" {
		details = append(details, apperrors.FieldError{Field: "sortOrder", Message: "must be asc or desc"})
	}
	if len(details) > 0 {
		util.WriteError(w, apperrors.InvalidQuery(details))
		return
	}

	dashboard, err := h.fleet.GetDashboard(r.Context(), claims, query)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	record, err := toExternalRecord(dashboard)
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}
	util.WriteJSON(w, http.StatusOK, record)
}
