package hospitalRepo

import (
	"context"
	"fmt"
	"time"

	"ambulink/database"
	"ambulink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHospitalRepo implements HospitalRepository using MongoDB.
type MongoHospitalRepo struct {
	coll *mongo.Collection
}

func NewMongoHospitalRepo(db *mongo.Database) *MongoHospitalRepo {
	return &MongoHospitalRepo{coll: db.Collection("hospitals")}
}

func (r *MongoHospitalRepo) Create(ctx context.Context, h *models.Hospital) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	h.Location = models.NewGeoPoint(h.Coordinates)
	if _, err := r.coll.InsertOne(ctx, h); err != nil {
		return fmt.Errorf("failed to create hospital: %w", database.TranslateError(err))
	}
	return nil
}

func (r *MongoHospitalRepo) List(ctx context.Context, query models.HospitalQuery) ([]models.Hospital, error) {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	match := bson.M{}
	if query.Type != "" {
		match["type"] = query.Type
	}

	var pipeline mongo.Pipeline
	if query.Near != nil {
		// $geoNear must be the first stage.
		pipeline = append(pipeline, geoNearStage(*query.Near, query.RadiusKm, match))
	} else {
		pipeline = append(pipeline,
			bson.D{{Key: "$match", Value: match}},
			bson.D{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
		)
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("hospital query failed: %w", err)
	}
	defer cursor.Close(ctx)

	hospitals := make([]models.Hospital, 0)
	if err := cursor.All(ctx, &hospitals); err != nil {
		return nil, fmt.Errorf("failed to decode hospitals: %w", err)
	}
	return hospitals, nil
}

func (r *MongoHospitalRepo) Nearest(ctx context.Context, at models.Coordinates, maxKm float64) (*models.Hospital, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		geoNearStage(at, maxKm, bson.M{}),
		bson.D{{Key: "$limit", Value: 1}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("nearest hospital query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var hospitals []models.Hospital
	if err := cursor.All(ctx, &hospitals); err != nil {
		return nil, fmt.Errorf("failed to decode hospital: %w", err)
	}
	if len(hospitals) == 0 {
		return nil, database.ErrNotFound
	}
	return &hospitals[0], nil
}

func (r *MongoHospitalRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the 2dsphere index required by $geoNear.
func (r *MongoHospitalRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create hospital indexes: %w", err)
	}
	return nil
}

// geoNearStage builds a $geoNear stage that reports distance in kilometres.
func geoNearStage(at models.Coordinates, maxKm float64, query bson.M) bson.D {
	stage := bson.D{
		{Key: "near", Value: bson.D{
			{Key: "type", Value: "Point"},
			{Key: "coordinates", Value: bson.A{at.Lng, at.Lat}},
		}},
		{Key: "distanceField", Value: "distanceKm"},
		{Key: "distanceMultiplier", Value: 0.001},
		{Key: "spherical", Value: true},
		{Key: "query", Value: query},
	}
	if maxKm > 0 {
		stage = append(stage, bson.E{Key: "maxDistance", Value: maxKm * 1000})
	}
	return bson.D{{Key: "$geoNear", Value: stage}}
}
