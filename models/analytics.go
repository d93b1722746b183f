package models

// Dashboard holds the admin analytics aggregates.
type Dashboard struct {
	TotalBookings          int64            `json:"totalBookings"`
	BookingsByStatus       map[string]int64 `json:"bookingsByStatus"`
	TodayBookings          int64            `json:"todayBookings"`
	Revenue                float64          `json:"revenue"`
	PriorityDistribution   map[string]int64 `json:"priorityDistribution"`
	ActiveDrivers          int64            `json:"activeDrivers"`
	TotalDrivers           int64            `json:"totalDrivers"`
	AverageDriverRating    float64          `json:"averageDriverRating"`
	AverageResponseMinutes float64          `json:"averageResponseMinutes"`
}
