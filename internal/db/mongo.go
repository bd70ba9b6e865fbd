package db

import (
	"context"
	"fmt"
	"time"

	"github.com/parcelio/fleet-core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup by id matches no document.
var ErrNotFound = fmt.Errorf("document not found")

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles the per-entity stores backed by a single database.
type Collections struct {
	Trips    TripCollection
	Vehicles VehicleCollection
	Drivers  DriverCollection
	Bookings BookingCollection
	Alerts   AlertCollection
	Users    UserCollection
}

// NewCollections wires the Mongo-backed stores for the given database.
func NewCollections(client *mongo.Client, dbName string) *Collections {
	database := client.Database(dbName)
	return &Collections{
		Trips:    &MongoTripCollection{Collection: database.Collection("trips")},
		Vehicles: &MongoVehicleCollection{Collection: database.Collection("vehicles")},
		Drivers:  &MongoDriverCollection{Collection: database.Collection("drivers")},
		Bookings: &MongoBookingCollection{Collection: database.Collection("bookings")},
		Alerts:   &MongoAlertCollection{Collection: database.Collection("alerts")},
		Users:    &MongoUserCollection{Collection: database.Collection("users")},
	}
}

// MongoTripCollection implements TripCollection for MongoDB.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// InsertTrip inserts a trip record into the collection.
func (c *MongoTripCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, trip)
	return err
}

// FindTripByID finds a trip by its ID.
func (c *MongoTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID: %w", err)
	}
	var trip models.Trip
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&trip)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &trip, nil
}

// FindTrips queries trip records from the collection.
func (c *MongoTripCollection) FindTrips(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// UpdateTripFields applies a partial update to a trip by its ID.
func (c *MongoTripCollection) UpdateTripFields(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid trip ID: %w", err)
	}
	fields["updated_at"] = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendStop appends an ordered stop to a trip.
func (c *MongoTripCollection) AppendStop(ctx context.Context, id string, stop models.Stop) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid trip ID: %w", err)
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{
		"$push": bson.M{"stops": stop},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementRemainingCapacity performs the atomic check-and-decrement of the
// capacity ledger. The filter carries the capacity check so two concurrent
// bookings can never both pass it for the same kilograms.
func (c *MongoTripCollection) DecrementRemainingCapacity(ctx context.Context, id string, weight float64) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid trip ID: %w", err)
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{
		"_id":                objectID,
		"status":             bson.M{"$nin": bson.A{models.TripCancelled, models.TripCompleted}},
		"remaining_capacity": bson.M{"$gte": weight},
	}, bson.M{
		"$inc": bson.M{"remaining_capacity": -weight},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// AddRemainingCapacity increments remaining capacity, clamped at total
// capacity via a pipeline $min, and returns the pre-update document.
func (c *MongoTripCollection) AddRemainingCapacity(ctx context.Context, id string, weight float64) (*models.Trip, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID: %w", err)
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"remaining_capacity": bson.M{"$min": bson.A{
				"$total_capacity",
				bson.M{"$add": bson.A{"$remaining_capacity", weight}},
			}},
			"updated_at": time.Now(),
		}}},
	}
	var before models.Trip
	err = c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update).Decode(&before)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &before, nil
}

// DeleteTrip deletes a trip by its ID. Used by archival only.
func (c *MongoTripCollection) DeleteTrip(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid trip ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}
	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindVehicles queries vehicle records from the collection.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// UpdateVehicleFields applies a partial update to a vehicle by its ID.
func (c *MongoVehicleCollection) UpdateVehicleFields(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}
	fields["updated_at"] = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoDriverCollection implements DriverCollection for MongoDB.
type MongoDriverCollection struct {
	Collection *mongo.Collection
}

// InsertDriver inserts a driver record into the collection.
func (c *MongoDriverCollection) InsertDriver(ctx context.Context, driver models.Driver) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, driver)
	return err
}

// FindDriverByID finds a driver by its ID.
func (c *MongoDriverCollection) FindDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid driver ID: %w", err)
	}
	var driver models.Driver
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// FindDrivers queries driver records from the collection.
func (c *MongoDriverCollection) FindDrivers(ctx context.Context, filter bson.M) ([]models.Driver, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// UpdateDriverFields applies a partial update to a driver by its ID.
func (c *MongoDriverCollection) UpdateDriverFields(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid driver ID: %w", err)
	}
	fields["updated_at"] = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimDriverForTrip assigns the driver to a trip only if the driver is not
// inactive and holds no active trip. The one-active-trip invariant lives in
// this filter.
func (c *MongoDriverCollection) ClaimDriverForTrip(ctx context.Context, driverID, tripID string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(driverID)
	if err != nil {
		return false, fmt.Errorf("invalid driver ID: %w", err)
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{
		"_id":    objectID,
		"status": bson.M{"$ne": models.DriverInactive},
		"$or": bson.A{
			bson.M{"current_trip_id": ""},
			bson.M{"current_trip_id": bson.M{"$exists": false}},
		},
	}, bson.M{"$set": bson.M{
		"current_trip_id": tripID,
		"status":          models.DriverOnTrip,
		"updated_at":      time.Now(),
	}})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// ReleaseDriverFromTrip clears the driver's trip assignment if it still
// points at the given trip. Idempotent, so a retried release is harmless.
func (c *MongoDriverCollection) ReleaseDriverFromTrip(ctx context.Context, driverID, tripID string) error {
	objectID, err := primitive.ObjectIDFromHex(driverID)
	if err != nil {
		return fmt.Errorf("invalid driver ID: %w", err)
	}
	_, err = c.Collection.UpdateOne(ctx, bson.M{
		"_id":             objectID,
		"current_trip_id": tripID,
	}, bson.M{"$set": bson.M{
		"current_trip_id": "",
		"status":          models.DriverActive,
		"updated_at":      time.Now(),
	}})
	return err
}

// MongoBookingCollection implements BookingCollection for MongoDB.
type MongoBookingCollection struct {
	Collection *mongo.Collection
}

// InsertBooking inserts a booking record into the collection.
func (c *MongoBookingCollection) InsertBooking(ctx context.Context, booking models.Booking) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, booking)
	return err
}

// FindBookingByID finds a booking by its ID.
func (c *MongoBookingCollection) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID: %w", err)
	}
	var booking models.Booking
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// FindBookings queries booking records from the collection.
func (c *MongoBookingCollection) FindBookings(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateBookingFields applies a partial update to a booking by its ID.
func (c *MongoBookingCollection) UpdateBookingFields(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid booking ID: %w", err)
	}
	fields["updated_at"] = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoAlertCollection implements AlertCollection for MongoDB.
type MongoAlertCollection struct {
	Collection *mongo.Collection
}

// InsertAlert inserts an alert record into the collection.
func (c *MongoAlertCollection) InsertAlert(ctx context.Context, alert models.Alert) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	alert.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, alert)
	return err
}

// FindAlerts queries alert records from the collection.
func (c *MongoAlertCollection) FindAlerts(ctx context.Context, filter bson.M) ([]models.Alert, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}
