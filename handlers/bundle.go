package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Auth endpoints
	RegisterHandler       gin.HandlerFunc
	LoginHandler          gin.HandlerFunc
	UpdateFCMTokenHandler gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler  gin.HandlerFunc
	ListBookingsHandler   gin.HandlerFunc
	GetBookingHandler     gin.HandlerFunc
	UpdateStatusHandler   gin.HandlerFunc
	AssignDriverHandler   gin.HandlerFunc
	SubmitFeedbackHandler gin.HandlerFunc
	EmergencyAlertHandler gin.HandlerFunc

	// Driver endpoints
	ListDriversHandler     gin.HandlerFunc
	NearbyDriversHandler   gin.HandlerFunc
	UpdateLocationHandler  gin.HandlerFunc
	SetAvailabilityHandler gin.HandlerFunc

	// Directory, notifications and analytics
	ListHospitalsHandler     gin.HandlerFunc
	CreateHospitalHandler    gin.HandlerFunc
	ListNotificationsHandler gin.HandlerFunc
	MarkReadHandler          gin.HandlerFunc
	DashboardHandler         gin.HandlerFunc

	// Realtime
	WebsocketHandler gin.HandlerFunc
}
