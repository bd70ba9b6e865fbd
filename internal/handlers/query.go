package handlers

import (
	"net/http"
	"strconv"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/mapping"
)

// TripQuery is the validated filter/sort/pagination contract for trip
// listings. Status is already translated to the internal vocabulary.
type TripQuery struct {
	Page            int
	Limit           int
	Status          string
	DriverID        string
	VehicleID       string
	DepartureCity   string
	DestinationCity string
	SortBy          string
	SortOrder       string
}

var allowedSortBy = map[string]bool{
	"departureTime": true,
	"revenue":       true,
	"status":        true,
	"createdAt":     true,
}

// MaxLimit caps the page size a caller may request.
const MaxLimit = 100

// ParseTripQuery validates the query parameters against the fixed
// allowed-values contract, collecting field-level detail for every
// violation.
func ParseTripQuery(r *http.Request) (*TripQuery, error) {
	q := r.URL.Query()
	query := &TripQuery{
		Page:            1,
		Limit:           10,
		DriverID:        q.Get("driverId"),
		VehicleID:       q.Get("vehicleId"),
		DepartureCity:   q.Get("departureCity"),
		DestinationCity: q.Get("destinationCity"),
		SortBy:          "departureTime",
		SortOrder:       "asc",
	}

	var details []apperrors.FieldError

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

	if raw := q.Get("status"); raw != "" {
		if !mapping.IsExternalTripStatus(raw) {
			details = append(details, apperrors.FieldError{Field: "status", Message: "must be one of: planned, scheduled, active, completed, cancelled, delayed"})
		} else {
			query.Status = mapping.TripStatusToInternal(raw)
		}
	}

	if raw := q.Get("sortBy"); raw != "" {
		if !allowedSortBy[raw] {
			details = append(details, apperrors.FieldError{Field: "sortBy", Message: "must be one of: departureTime, revenue, status, createdAt"})
		} else {
			query.SortBy = raw
		}
	}

	if raw := q.Get("sortOrder"); raw != "" {
		if raw != "asc" && raw != "desc" {
			details = append(details, apperrors.FieldError{Field: "sortOrder", Message: "must be asc or desc"})
		} else {
			query.SortOrder = raw
		}
	}

	if len(details) > 0 {
		return nil, apperrors.InvalidQuery(details)
	}
	return query, nil
}
