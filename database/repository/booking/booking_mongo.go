package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ambulink/database"
	"ambulink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName = "bookings"
	defaultLimit   = 100
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a booking repository on the given database.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{coll: db.Collection(collectionName)}
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", database.TranslateError(err))
	}
	return nil
}

// FindByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// FindByFilter lists bookings matching the filter, newest first.
func (r *MongoBookingRepo) FindByFilter(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.PatientID != "" {
		query["patientId"] = filter.PatientID
	}
	if filter.DriverID != "" {
		query["driverId"] = filter.DriverID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]models.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// FindActiveByDriver returns the assigned, en route or arrived booking of a driver.
func (r *MongoBookingRepo) FindActiveByDriver(ctx context.Context, driverID string) (*models.Booking, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"driverId": driverID,
		"status": bson.M{"$in": bson.A{
			models.StatusAssigned, models.StatusEnRoute, models.StatusArrived,
		}},
	}
	var booking models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch active booking for driver %s: %w", driverID, err)
	}
	return &booking, nil
}

// Save replaces the booking conditionally on its status and version.
func (r *MongoBookingRepo) Save(ctx context.Context, booking *models.Booking, expectedStatus models.BookingStatus) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":      booking.ID,
		"status":  expectedStatus,
		"version": booking.Version,
	}
	next := booking.Clone()
	next.Version = booking.Version + 1

	result, err := r.coll.ReplaceOne(ctx, filter, next)
	if err != nil {
		return fmt.Errorf("failed to save booking %s: %w", booking.ID, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrVersionConflict
	}
	booking.Version = next.Version
	return nil
}

// SetFeedback attaches feedback to a completed booking that has none yet.
func (r *MongoBookingRepo) SetFeedback(ctx context.Context, id string, feedback models.Feedback) (*models.Booking, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":       id,
		"status":   models.StatusCompleted,
		"feedback": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{"feedback": feedback, "updatedAt": feedback.SubmittedAt},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to store feedback for booking %s: %w", id, err)
	}
	return &updated, nil
}
