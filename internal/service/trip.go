package service

import (
	"context"
	"errors"
	"time"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/db"
	"github.com/parcelio/fleet-core/internal/events"
	"github.com/parcelio/fleet-core/internal/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripService owns the trip state machine and the capacity ledger.
type TripService struct {
	trips    db.TripCollection
	drivers  db.DriverCollection
	bookings db.BookingCollection
	events   events.Publisher
}

// NewTripService creates a new trip lifecycle service
func NewTripService(trips db.TripCollection, drivers db.DriverCollection, bookings db.BookingCollection, publisher events.Publisher) *TripService {
	return &TripService{
		trips:    trips,
		drivers:  drivers,
		bookings: bookings,
		events:   publisher,
	}
}

// CreateTripInput carries the fields needed to create a trip.
type CreateTripInput struct {
	VehicleID     string         `json:"vehicle_id"`
	Departure     models.Address `json:"departure"`
	Destination   models.Address `json:"destination"`
	DepartureTime time.Time      `json:"departure_time"`
	ArrivalTime   time.Time      `json:"arrival_time"`
	Pricing       models.Pricing `json:"pricing"`
	TotalCapacity float64        `json:"total_capacity"`
}

// CreateTrip validates and persists a new trip. Only an organization admin
// may create trips; the trip starts in the planned state with the full
// capacity available.
func (s *TripService) CreateTrip(ctx context.Context, actor *models.Claims, input CreateTripInput) (*models.Trip, error) {
	if actor.Role != models.RoleOrgAdmin {
		return nil, apperrors.Forbidden()
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, apperrors.InvalidDates()
	}
	if input.TotalCapacity < 1 {
		return nil, apperrors.InvalidCapacity()
	}

	trip := models.Trip{
		ID:                primitive.NewObjectID(),
		OrganizationID:    actor.OrganizationID,
		VehicleID:         input.VehicleID,
		Departure:         input.Departure,
		Destination:       input.Destination,
		DepartureTime:     input.DepartureTime,
		ArrivalTime:       input.ArrivalTime,
		Pricing:           input.Pricing,
		TotalCapacity:     input.TotalCapacity,
		RemainingCapacity: input.TotalCapacity,
		Status:            models.TripPlanned,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := s.trips.InsertTrip(ctx, trip); err != nil {
		return nil, apperrors.CreationFailed(err)
	}

	s.publish(events.TopicTripStatus, map[string]interface{}{
		"tripId":         trip.ID.Hex(),
		"organizationId": trip.OrganizationID,
		"status":         trip.Status,
	})
	return &trip, nil
}

// GetTrip fetches a single trip scoped to the actor's organization.
func (s *TripService) GetTrip(ctx context.Context, actor *models.Claims, tripID string) (*models.Trip, error) {
	trip, err := s.trips.FindTripByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("trip")
		}
		return nil, apperrors.FetchFailed(err)
	}
	if actor.Role != models.RoleCustomer && trip.OrganizationID != actor.OrganizationID {
		return nil, apperrors.Forbidden()
	}
	return trip, nil
}

// AssignDriver assigns a driver to a trip. The driver claim is atomic at the
// store, so a driver already holding an active trip is rejected with
// DRIVER_UNAVAILABLE. Trip and driver are updated separately; a failed trip
// update releases the claim again.
func (s *TripService) AssignDriver(ctx context.Context, actor *models.Claims, tripID, driverID string) (*models.Trip, error) {
	if actor.Role != models.RoleOrgAdmin {
		return nil, apperrors.Forbidden()
	}

	trip, err := s.GetTrip(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.Bookable() {
		return nil, apperrors.Validation("cannot assign a driver to a " + trip.Status + " trip")
	}

	claimed, err := s.drivers.ClaimDriverForTrip(ctx, driverID, tripID)
	if err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	if !claimed {
		return nil, apperrors.DriverUnavailable()
	}

	if err := s.trips.UpdateTripFields(ctx, tripID, bson.M{"driver_id": driverID}); err != nil {
		if relErr := s.drivers.ReleaseDriverFromTrip(ctx, driverID, tripID); relErr != nil {
			log.WithError(relErr).WithFields(log.Fields{
				"trip_id":   tripID,
				"driver_id": driverID,
			}).Error("failed to release driver after trip update failure")
		}
		return nil, apperrors.OperationFailed(err)
	}

	trip.DriverID = driverID
	return trip, nil
}

// AddStop appends an ordered stop to a trip. Sequence values must be unique
// and strictly greater than every existing stop's sequence.
func (s *TripService) AddStop(ctx context.Context, actor *models.Claims, tripID string, stop models.Stop) (*models.Trip, error) {
	if actor.Role != models.RoleOrgAdmin {
		return nil, apperrors.Forbidden()
	}
	if stop.Sequence < 1 {
		return nil, apperrors.Validation("stop sequence must be at least 1")
	}

	trip, err := s.GetTrip(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	for _, existing := range trip.Stops {
		if stop.Sequence <= existing.Sequence {
			return nil, apperrors.Validation("stop sequence must be greater than existing sequences")
		}
	}

	if stop.Status == "" {
		stop.Status = "pending"
	}
	if err := s.trips.AppendStop(ctx, tripID, stop); err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	trip.Stops = append(trip.Stops, stop)
	return trip, nil
}

// BookCapacity atomically reserves weight on a trip. The check-and-decrement
// happens in a single conditional update at the store, so two concurrent
// calls can never oversell the remaining capacity.
func (s *TripService) BookCapacity(ctx context.Context, tripID string, weight float64) error {
	if weight <= 0 {
		return apperrors.Validation("booking weight must be positive")
	}

	decremented, err := s.trips.DecrementRemainingCapacity(ctx, tripID, weight)
	if err != nil {
		return apperrors.OperationFailed(err)
	}
	if decremented {
		return nil
	}

	// No document matched: distinguish why for the caller.
	trip, err := s.trips.FindTripByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperrors.NotFound("trip")
		}
		return apperrors.FetchFailed(err)
	}
	if trip.Status == models.TripCancelled {
		return apperrors.TripCancelled()
	}
	if trip.Status == models.TripCompleted {
		return apperrors.Validation("trip is completed and no longer accepts bookings")
	}
	return apperrors.CapacityExceeded()
}

// ReleaseCapacity returns previously booked weight to a trip. The increment
// is clamped at the total capacity by the store; a clamp indicates a ledger
// inconsistency and is logged rather than propagated.
func (s *TripService) ReleaseCapacity(ctx context.Context, tripID string, weight float64) error {
	if weight <= 0 {
		return apperrors.Validation("release weight must be positive")
	}

	before, err := s.trips.AddRemainingCapacity(ctx, tripID, weight)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperrors.NotFound("trip")
		}
		return apperrors.OperationFailed(err)
	}
	if before.RemainingCapacity+weight > before.TotalCapacity {
		log.WithFields(log.Fields{
			"trip_id":            tripID,
			"release_weight":     weight,
			"remaining_capacity": before.RemainingCapacity,
			"total_capacity":     before.TotalCapacity,
		}).Warn("capacity release clamped at total capacity, ledger inconsistency")
	}
	return nil
}

// CreateBooking prices and records a customer booking, reserving the weight
// on the trip first. A failed insert returns the reserved weight.
func (s *TripService) CreateBooking(ctx context.Context, actor *models.Claims, tripID string, weight float64) (*models.Booking, error) {
	trip, err := s.trips.FindTripByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("trip")
		}
		return nil, apperrors.FetchFailed(err)
	}

	if err := s.BookCapacity(ctx, tripID, weight); err != nil {
		return nil, err
	}

	price := trip.Pricing.BasePrice + weight*trip.Pricing.PricePerKg
	if price < trip.Pricing.MinimumPrice {
		price = trip.Pricing.MinimumPrice
	}

	booking := models.Booking{
		ID:         primitive.NewObjectID(),
		TripID:     tripID,
		CustomerID: actor.UserID,
		WeightKg:   weight,
		Price:      price,
		Currency:   trip.Pricing.Currency,
		Status:     models.BookingConfirmed,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.bookings.InsertBooking(ctx, booking); err != nil {
		if relErr := s.ReleaseCapacity(ctx, tripID, weight); relErr != nil {
			log.WithError(relErr).WithField("trip_id", tripID).Error("failed to release capacity after booking insert failure")
		}
		return nil, apperrors.CreationFailed(err)
	}

	s.publish(events.TopicBookingCreated, map[string]interface{}{
		"bookingId": booking.ID.Hex(),
		"tripId":    tripID,
		"weightKg":  weight,
		"price":     price,
	})
	return &booking, nil
}

// CancelBooking cancels a booking and returns its weight to the trip.
func (s *TripService) CancelBooking(ctx context.Context, actor *models.Claims, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.FindBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("booking")
		}
		return nil, apperrors.FetchFailed(err)
	}
	if actor.Role == models.RoleCustomer && booking.CustomerID != actor.UserID {
		return nil, apperrors.Forbidden()
	}
	if booking.Status == models.BookingCancelled {
		return nil, apperrors.Validation("booking is already cancelled")
	}

	if err := s.bookings.UpdateBookingFields(ctx, bookingID, bson.M{"status": models.BookingCancelled}); err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	if err := s.ReleaseCapacity(ctx, booking.TripID, booking.WeightKg); err != nil {
		return nil, err
	}

	booking.Status = models.BookingCancelled
	s.publish(events.TopicBookingCancel, map[string]interface{}{
		"bookingId": bookingID,
		"tripId":    booking.TripID,
		"weightKg":  booking.WeightKg,
	})
	return booking, nil
}

// CancelTrip marks a trip cancelled. Outstanding bookings are informed by
// the booking domain; this service only flips the state and refuses new
// capacity bookings afterwards.
func (s *TripService) CancelTrip(ctx context.Context, actor *models.Claims, tripID, reason string) (*models.Trip, error) {
	if actor.Role != models.RoleOrgAdmin {
		return nil, apperrors.Forbidden()
	}
	return s.transition(ctx, actor, tripID, models.TripCancelled, reason)
}

// UpdateTripInput is a partial field set for trip updates. Status, when
// present, is the internal vocabulary and must be a valid transition.
type UpdateTripInput struct {
	Status        string          `json:"status,omitempty"`
	DepartureTime *time.Time      `json:"departure_time,omitempty"`
	ArrivalTime   *time.Time      `json:"arrival_time,omitempty"`
	Pricing       *models.Pricing `json:"pricing,omitempty"`
	VehicleID     string          `json:"vehicle_id,omitempty"`
}

// UpdateTrip applies a partial update to a trip. Admin-only.
func (s *TripService) UpdateTrip(ctx context.Context, actor *models.Claims, tripID string, input UpdateTripInput) (*models.Trip, error) {
	if actor.Role != models.RoleOrgAdmin {
		return nil, apperrors.Forbidden()
	}

	trip, err := s.GetTrip(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if input.Status != "" {
		if err := validateTransition(trip.Status, input.Status); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		fields["status"] = input.Status
	}
	departure := trip.DepartureTime
	arrival := trip.ArrivalTime
	if input.DepartureTime != nil {
		departure = *input.DepartureTime
		fields["departure_time"] = departure
	}
	if input.ArrivalTime != nil {
		arrival = *input.ArrivalTime
		fields["arrival_time"] = arrival
	}
	if !arrival.After(departure) {
		return nil, apperrors.InvalidDates()
	}
	if input.Pricing != nil {
		fields["pricing"] = *input.Pricing
	}
	if input.VehicleID != "" {
		fields["vehicle_id"] = input.VehicleID
	}
	if len(fields) == 0 {
		return trip, nil
	}

	if err := s.trips.UpdateTripFields(ctx, tripID, fields); err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	if input.Status != "" && input.Status != trip.Status {
		s.publish(events.TopicTripStatus, map[string]interface{}{
			"tripId":         tripID,
			"organizationId": trip.OrganizationID,
			"status":         input.Status,
			"previousStatus": trip.Status,
		})
		trip.Status = input.Status
	}
	return s.trips.FindTripByID(ctx, tripID)
}

// BulkResult reports the per-trip outcome of a bulk status update.
type BulkResult struct {
	TripID  string `json:"tripId"`
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

var bulkActions = map[string]string{
	"cancel":   models.TripCancelled,
	"complete": models.TripCompleted,
	"start":    models.TripInProgress,
	"delay":    models.TripDelayed,
}

// BulkUpdateStatus applies one action to a list of trips, reporting each
// trip's outcome individually. One bad id does not abort the batch.
func (s *TripService) BulkUpdateStatus(ctx context.Context, actor *models.Claims, tripIDs []string, action string) ([]BulkResult, error) {
	if actor.Role != models.RoleOrgAdmin {
		return nil, apperrors.Forbidden()
	}
	target, ok := bulkActions[action]
	if !ok {
		return nil, apperrors.Validation("unknown bulk action: " + action)
	}

	results := make([]BulkResult, 0, len(tripIDs))
	for _, id := range tripIDs {
		if _, err := s.transition(ctx, actor, id, target, ""); err != nil {
			results = append(results, BulkResult{TripID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{TripID: id, Success: true, Status: target})
	}
	return results, nil
}

// ListTrips returns all trips of the organization matching the filter.
func (s *TripService) ListTrips(ctx context.Context, actor *models.Claims, filter bson.M) ([]models.Trip, error) {
	if filter == nil {
		filter = bson.M{}
	}
	filter["organization_id"] = actor.OrganizationID
	trips, err := s.trips.FindTrips(ctx, filter)
	if err != nil {
		return nil, apperrors.FetchFailed(err)
	}
	return trips, nil
}

// ArchiveTrip permanently removes a terminal trip. Booking activity never
// destroys a trip; archival is the only deletion path.
func (s *TripService) ArchiveTrip(ctx context.Context, actor *models.Claims, tripID string) error {
	if actor.Role != models.RoleOrgAdmin {
		return apperrors.Forbidden()
	}
	trip, err := s.GetTrip(ctx, actor, tripID)
	if err != nil {
		return err
	}
	if trip.Status != models.TripCompleted && trip.Status != models.TripCancelled {
		return apperrors.Validation("only completed or cancelled trips can be archived")
	}
	if err := s.trips.DeleteTrip(ctx, tripID); err != nil {
		return apperrors.OperationFailed(err)
	}
	return nil
}

// transition moves a trip to a new status after validating the move, and
// releases an assigned driver when the trip reaches a terminal state.
func (s *TripService) transition(ctx context.Context, actor *models.Claims, tripID, target, reason string) (*models.Trip, error) {
	trip, err := s.GetTrip(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if err := validateTransition(trip.Status, target); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if trip.Status == target {
		return trip, nil
	}

	fields := bson.M{"status": target}
	if reason != "" {
		fields["cancel_reason"] = reason
	}
	if err := s.trips.UpdateTripFields(ctx, tripID, fields); err != nil {
		return nil, apperrors.OperationFailed(err)
	}

	if trip.DriverID != "" && (target == models.TripCompleted || target == models.TripCancelled) {
		if err := s.drivers.ReleaseDriverFromTrip(ctx, trip.DriverID, tripID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"trip_id":   tripID,
				"driver_id": trip.DriverID,
			}).Error("failed to release driver on terminal trip status")
		}
	}

	s.publish(events.TopicTripStatus, map[string]interface{}{
		"tripId":         tripID,
		"organizationId": trip.OrganizationID,
		"status":         target,
		"previousStatus": trip.Status,
	})
	trip.Status = target
	trip.CancelReason = reason
	return trip, nil
}

func (s *TripService) publish(topic string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(topic, payload); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("failed to publish fleet event")
	}
}
