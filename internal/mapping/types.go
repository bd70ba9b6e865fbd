package mapping

import "github.com/parcelio/fleet-core/internal/models"

// Bidirectional translators between the external wire vocabulary
// (upper-case enums such as TRUCK or FREIGHT_FORWARDER, and the filter
// status "active") and the internal domain vocabulary. Unknown values fall
// back to the designated OTHER/default token instead of failing, so new
// fleet-member types never break the pipeline.

var vehicleTypeToExternal = map[string]string{
	models.VehicleTruck:      "TRUCK",
	models.VehicleVan:        "VAN",
	models.VehicleMotorcycle: "MOTORCYCLE",
	models.VehicleCar:        "CAR",
	models.VehicleBus:        "BUS",
	models.VehicleOther:      "OTHER",
}

var vehicleTypeToInternal = map[string]string{
	"TRUCK":      models.VehicleTruck,
	"VAN":        models.VehicleVan,
	"MOTORCYCLE": models.VehicleMotorcycle,
	"CAR":        models.VehicleCar,
	"BUS":        models.VehicleBus,
	"OTHER":      models.VehicleOther,
}

var orgTypeToExternal = map[string]string{
	models.OrgFreightForward:    "FREIGHT_FORWARDER",
	models.OrgMovingCompany:     "MOVING_COMPANY",
	models.OrgEcommerce:         "ECOMMERCE",
	models.OrgCorporate:         "CORPORATE",
	models.OrgLogisticsProvider: "LOGISTICS_PROVIDER",
	models.OrgOther:             "OTHER",
}

var orgTypeToInternal = map[string]string{
	"FREIGHT_FORWARDER":  models.OrgFreightForward,
	"MOVING_COMPANY":     models.OrgMovingCompany,
	"ECOMMERCE":          models.OrgEcommerce,
	"CORPORATE":          models.OrgCorporate,
	"LOGISTICS_PROVIDER": models.OrgLogisticsProvider,
	"OTHER":              models.OrgOther,
}

// Trip status is the one mapping with a non-identity pair: internal
// "in_progress" is exposed externally as "active". The asymmetric naming
// matches the partner system's vocabulary and must be preserved exactly.
var tripStatusToExternal = map[string]string{
	models.TripPlanned:    "planned",
	models.TripScheduled:  "scheduled",
	models.TripInProgress: "active",
	models.TripCompleted:  "completed",
	models.TripCancelled:  "cancelled",
	models.TripDelayed:    "delayed",
}

var tripStatusToInternal = map[string]string{
	"planned":   models.TripPlanned,
	"scheduled": models.TripScheduled,
	"active":    models.TripInProgress,
	"completed": models.TripCompleted,
	"cancelled": models.TripCancelled,
	"delayed":   models.TripDelayed,
}

// VehicleTypeToExternal returns the external token for an internal vehicle
// type, falling back to "OTHER" for unrecognized values.
func VehicleTypeToExternal(internal string) string {
	if ext, ok := vehicleTypeToExternal[internal]; ok {
		return ext
	}
	return "OTHER"
}

// VehicleTypeToInternal returns the internal vehicle type for an external
// token, falling back to "other" for unrecognized values.
func VehicleTypeToInternal(external string) string {
	if in, ok := vehicleTypeToInternal[external]; ok {
		return in
	}
	return models.VehicleOther
}

// OrgTypeToExternal returns the external token for an internal organization
// type, falling back to "OTHER".
func OrgTypeToExternal(internal string) string {
	if ext, ok := orgTypeToExternal[internal]; ok {
		return ext
	}
	return "OTHER"
}

// OrgTypeToInternal returns the internal organization type for an external
// token, falling back to "other".
func OrgTypeToInternal(external string) string {
	if in, ok := orgTypeToInternal[external]; ok {
		return in
	}
	return models.OrgOther
}

// TripStatusToExternal returns the external status for an internal trip
// status, falling back to "scheduled".
func TripStatusToExternal(internal string) string {
	if ext, ok := tripStatusToExternal[internal]; ok {
		return ext
	}
	return "scheduled"
}

// TripStatusToInternal returns the internal status for an external trip
// status, falling back to "planned".
func TripStatusToInternal(external string) string {
	if in, ok := tripStatusToInternal[external]; ok {
		return in
	}
	return models.TripPlanned
}

// IsExternalTripStatus reports whether the value belongs to the external
// filter vocabulary.
func IsExternalTripStatus(external string) bool {
	_, ok := tripStatusToInternal[external]
	return ok
}
