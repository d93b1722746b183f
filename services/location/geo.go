package location

import (
	"context"
	"fmt"

	"ambulink/models"

	"github.com/go-redis/redis/v8"
)

// driversKey is the Redis GEO set of last known driver positions.
const driversKey = "drivers:locations"

// Hit is a driver found by a radius search.
type Hit struct {
	DriverID   string
	DistanceKm float64
	Location   models.Coordinates
}

// Index is a spatial index of driver positions.
type Index interface {
	Set(ctx context.Context, driverID string, at models.Coordinates) error
	Remove(ctx context.Context, driverID string) error
	Nearby(ctx context.Context, center models.Coordinates, radiusKm float64, limit int) ([]Hit, error)
}

// RedisIndex keeps driver positions in a Redis GEO set.
type RedisIndex struct {
	client *redis.Client
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

func (r *RedisIndex) Set(ctx context.Context, driverID string, at models.Coordinates) error {
	err := r.client.GeoAdd(ctx, driversKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: at.Lng,
		Latitude:  at.Lat,
	}).Err()
	if err != nil {
		return fmt.Errorf("geo add %s: %w", driverID, err)
	}
	return nil
}

func (r *RedisIndex) Remove(ctx context.Context, driverID string) error {
	return r.client.ZRem(ctx, driversKey, driverID).Err()
}

func (r *RedisIndex) Nearby(ctx context.Context, center models.Coordinates, radiusKm float64, limit int) ([]Hit, error) {
	res, err := r.client.GeoSearchLocation(ctx, driversKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  center.Lng,
			Latitude:   center.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}

	hits := make([]Hit, 0, len(res))
	for _, loc := range res {
		hits = append(hits, Hit{
			DriverID:   loc.Name,
			DistanceKm: loc.Dist,
			Location:   models.Coordinates{Lat: loc.Latitude, Lng: loc.Longitude},
		})
	}
	return hits, nil
}

// Replace swaps the whole set for positions in one transaction.
func (r *RedisIndex) Replace(ctx context.Context, positions map[string]models.Coordinates) error {
	locs := make([]*redis.GeoLocation, 0, len(positions))
	for id, at := range positions {
		locs = append(locs, &redis.GeoLocation{Name: id, Longitude: at.Lng, Latitude: at.Lat})
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, driversKey)
	if len(locs) > 0 {
		pipe.GeoAdd(ctx, driversKey, locs...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("geo replace: %w", err)
	}
	return nil
}
