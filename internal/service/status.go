package service

import (
	"fmt"

	"github.com/parcelio/fleet-core/internal/models"
)

// allowedTransitions is the trip status machine as a directed graph.
// planned and scheduled are both pre-departure states; completed and
// cancelled are terminal.
var allowedTransitions = map[string][]string{
	models.TripPlanned:    {models.TripScheduled, models.TripCancelled},
	models.TripScheduled:  {models.TripInProgress, models.TripDelayed, models.TripCancelled},
	models.TripDelayed:    {models.TripInProgress, models.TripCancelled},
	models.TripInProgress: {models.TripCompleted, models.TripDelayed, models.TripCancelled},
	models.TripCompleted:  {},
	models.TripCancelled:  {},
}

// CanTransitionTrip reports whether from -> to is an allowed trip status
// transition. A no-op transition (from == to) is allowed.
func CanTransitionTrip(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// validateTransition returns a descriptive error for a disallowed move.
func validateTransition(from, to string) error {
	if !CanTransitionTrip(from, to) {
		return fmt.Errorf("invalid trip status transition: %s -> %s", from, to)
	}
	return nil
}
