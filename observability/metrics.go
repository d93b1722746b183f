package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ambulink", Name: "bookings_created_total", Help: "Bookings created by priority"},
		[]string{"priority", "emergency"},
	)
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ambulink", Name: "booking_transitions_total", Help: "Booking status transitions"},
		[]string{"from", "to"},
	)
	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ambulink", Name: "booking_conflicts_total", Help: "Conditional booking writes that lost a race"})

	WebsocketClients  = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ambulink", Name: "websocket_clients", Help: "Connected websocket clients"})
	BroadcastFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ambulink", Name: "broadcast_failures_total", Help: "Event deliveries that failed per sink"},
		[]string{"sink"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ambulink", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ambulink",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
