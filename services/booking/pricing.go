package booking

import (
	"time"

	"ambulink/models"
	"ambulink/utils"
)

const (
	BaseFare           = 50.0
	PerKmRate          = 2.0
	FallbackDistanceKm = 10.0
	Currency           = "USD"

	// averageSpeedKmh is used to estimate the driver's arrival.
	averageSpeedKmh  = 40.0
	fallbackArrival  = 30 * time.Minute
	distanceDecimals = 2
)

var priorityMultipliers = map[models.Priority]float64{
	models.PriorityLow:      1.0,
	models.PriorityMedium:   1.2,
	models.PriorityHigh:     1.5,
	models.PriorityCritical: 2.0,
}

// PriorityMultiplier returns the fare multiplier of a priority.
func PriorityMultiplier(p models.Priority) float64 {
	if m, ok := priorityMultipliers[p]; ok {
		return m
	}
	return 1.0
}

// EstimateDistanceKm prefers the client's route, then the straight-line
// distance, then a flat fallback.
func EstimateDistanceKm(pickup, destination models.Coordinates, route *models.Route) float64 {
	if route != nil && route.DistanceKm > 0 {
		return route.DistanceKm
	}
	if !pickup.IsZero() && !destination.IsZero() {
		return utils.HaversineKm(pickup, destination)
	}
	return FallbackDistanceKm
}

// CalculateFare prices a ride: (base + km × rate) × priority multiplier.
func CalculateFare(distanceKm float64, priority models.Priority) models.Fare {
	multiplier := PriorityMultiplier(priority)
	distanceFare := distanceKm * PerKmRate
	return models.Fare{
		BaseFare:           BaseFare,
		DistanceFare:       utils.RoundTo(distanceFare, 2),
		PriorityMultiplier: multiplier,
		TotalFare:          utils.RoundTo((BaseFare+distanceFare)*multiplier, 2),
		DistanceKm:         utils.RoundTo(distanceKm, distanceDecimals),
		Currency:           Currency,
	}
}

// EstimateArrival projects when a driver at from reaches pickup.
func EstimateArrival(now time.Time, from *models.Coordinates, pickup models.Coordinates) time.Time {
	if from == nil || from.IsZero() || pickup.IsZero() {
		return now.Add(fallbackArrival)
	}
	hours := utils.HaversineKm(*from, pickup) / averageSpeedKmh
	return now.Add(time.Duration(hours * float64(time.Hour)))
}
