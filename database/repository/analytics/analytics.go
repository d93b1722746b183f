package analyticsRepo

import (
	"context"
	"fmt"
	"time"

	"ambulink/database"
	"ambulink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnalyticsRepository computes dashboard aggregates.
type AnalyticsRepository interface {
	Dashboard(ctx context.Context, now time.Time) (*models.Dashboard, error)
}

// MongoAnalyticsRepo runs aggregation pipelines over bookings and users.
type MongoAnalyticsRepo struct {
	bookings *mongo.Collection
	users    *mongo.Collection
}

func NewMongoAnalyticsRepo(db *mongo.Database) *MongoAnalyticsRepo {
	return &MongoAnalyticsRepo{
		bookings: db.Collection("bookings"),
		users:    db.Collection("users"),
	}
}

type bookingFacets struct {
	ByStatus []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	} `bson:"byStatus"`
	ByPriority []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	} `bson:"byPriority"`
	Today []struct {
		Count int64 `bson:"count"`
	} `bson:"today"`
	Revenue []struct {
		Total float64 `bson:"total"`
	} `bson:"revenue"`
	Response []struct {
		AvgMs float64 `bson:"avgMs"`
	} `bson:"response"`
}

type driverStats struct {
	Total     int64   `bson:"total"`
	Active    int64   `bson:"active"`
	AvgRating float64 `bson:"avgRating"`
}

// Dashboard aggregates booking and driver statistics.
func (r *MongoAnalyticsRepo) Dashboard(ctx context.Context, now time.Time) (*models.Dashboard, error) {
	ctx, cancel := database.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Response time is measured from creation to the first "assigned" timeline entry.
	assignedAt := bson.M{"$arrayElemAt": bson.A{
		bson.M{"$filter": bson.M{
			"input": "$timeline",
			"as":    "t",
			"cond":  bson.M{"$eq": bson.A{"$$t.status", models.StatusAssigned}},
		}},
		0,
	}}

	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"byStatus": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
			},
			"byPriority": bson.A{
				bson.M{"$group": bson.M{"_id": "$priority", "count": bson.M{"$sum": 1}}},
			},
			"today": bson.A{
				bson.M{"$match": bson.M{"createdAt": bson.M{"$gte": startOfDay}}},
				bson.M{"$count": "count"},
			},
			"revenue": bson.A{
				bson.M{"$match": bson.M{"status": models.StatusCompleted}},
				bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$fare.totalFare"}}},
			},
			"response": bson.A{
				bson.M{"$addFields": bson.M{"assigned": assignedAt}},
				bson.M{"$match": bson.M{"assigned.at": bson.M{"$exists": true}}},
				bson.M{"$group": bson.M{"_id": nil, "avgMs": bson.M{
					"$avg": bson.M{"$subtract": bson.A{"$assigned.at", "$createdAt"}},
				}}},
			},
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("booking aggregation failed: %w", err)
	}
	var facets []bookingFacets
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("failed to decode booking aggregates: %w", err)
	}

	dash := &models.Dashboard{
		BookingsByStatus:     map[string]int64{},
		PriorityDistribution: map[string]int64{},
	}
	if len(facets) > 0 {
		f := facets[0]
		for _, s := range f.ByStatus {
			dash.BookingsByStatus[s.ID] = s.Count
			dash.TotalBookings += s.Count
		}
		for _, p := range f.ByPriority {
			dash.PriorityDistribution[p.ID] = p.Count
		}
		if len(f.Today) > 0 {
			dash.TodayBookings = f.Today[0].Count
		}
		if len(f.Revenue) > 0 {
			dash.Revenue = f.Revenue[0].Total
		}
		if len(f.Response) > 0 {
			dash.AverageResponseMinutes = f.Response[0].AvgMs / float64(time.Minute/time.Millisecond)
		}
	}

	drivers, err := r.driverStats(ctx)
	if err != nil {
		return nil, err
	}
	dash.TotalDrivers = drivers.Total
	dash.ActiveDrivers = drivers.Active
	dash.AverageDriverRating = drivers.AvgRating
	return dash, nil
}

func (r *MongoAnalyticsRepo) driverStats(ctx context.Context) (driverStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"role": models.RoleDriver}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"total":  bson.M{"$sum": 1},
			"active": bson.M{"$sum": bson.M{"$cond": bson.A{"$available", 1, 0}}},
			// Unrated drivers do not drag the average down.
			"avgRating": bson.M{"$avg": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$totalRides", 0}}, "$rating", nil,
			}}},
		}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return driverStats{}, fmt.Errorf("driver aggregation failed: %w", err)
	}
	var stats []driverStats
	if err := cursor.All(ctx, &stats); err != nil {
		return driverStats{}, fmt.Errorf("failed to decode driver aggregates: %w", err)
	}
	if len(stats) == 0 {
		return driverStats{}, nil
	}
	return stats[0], nil
}
