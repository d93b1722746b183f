package userRepo

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

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", database.TranslateError(err))
	}
	return nil
}

// UpdateAvailability sets the available flag of a driver.
func (r *MongoUserRepo) UpdateAvailability(ctx context.Context, id string, available bool) error {
	return r.updateFields(ctx, id, bson.M{"available": available})
}

// MarkAvailable puts a driver on duty unless a claim is outstanding.
func (r *MongoUserRepo) MarkAvailable(ctx context.Context, id string) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":              id,
		"role":            models.RoleDriver,
		"activeBookingId": bson.M{"$in": bson.A{nil, ""}},
	}
	update := bson.M{"$set": bson.M{"available": true, "updatedAt": time.Now()}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark driver %s available: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrVersionConflict
	}
	return nil
}

// ClaimDriver marks an available driver busy in a single conditional write.
func (r *MongoUserRepo) ClaimDriver(ctx context.Context, id, bookingID string) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "role": models.RoleDriver, "available": true}
	update := bson.M{"$set": bson.M{
		"available":       false,
		"activeBookingId": bookingID,
		"updatedAt":       time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim driver %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrVersionConflict
	}
	return nil
}

// ReleaseDriver frees a driver held for bookingID.
func (r *MongoUserRepo) ReleaseDriver(ctx context.Context, id, bookingID string) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "activeBookingId": bookingID}
	update := bson.M{
		"$set":   bson.M{"available": true, "updatedAt": time.Now()},
		"$unset": bson.M{"activeBookingId": ""},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release driver %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrVersionConflict
	}
	return nil
}

// UpdateLocation stores the latest driver position. Last writer wins.
func (r *MongoUserRepo) UpdateLocation(ctx context.Context, id string, location models.Coordinates) error {
	if location.Timestamp == nil {
		now := time.Now()
		location.Timestamp = &now
	}
	return r.updateFields(ctx, id, bson.M{"location": location})
}

// UpdateRating folds rating into the running average with a pipeline update,
// so concurrent ratings never overwrite each other.
func (r *MongoUserRepo) UpdateRating(ctx context.Context, id string, rating int) (*models.User, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rides := bson.M{"$ifNull": bson.A{"$totalRides", 0}}
	avg := bson.M{"$ifNull": bson.A{"$rating", 0}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"rating": bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{avg, rides}}, rating}},
				bson.M{"$add": bson.A{rides, 1}},
			}},
			"totalRides": bson.M{"$add": bson.A{rides, 1}},
			"updatedAt":  "$$NOW",
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update rating for driver %s: %w", id, err)
	}
	return &user, nil
}

// UpdateFCMToken stores the push token of the user's device.
func (r *MongoUserRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	return r.updateFields(ctx, id, bson.M{"fcmToken": token})
}
