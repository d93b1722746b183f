package routes

import (
	"time"

	"ambulink/handlers"
	"ambulink/middleware"
	"ambulink/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAuthRoutes registers account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.RegisterHandler)
		api.POST("/login", hb.LoginHandler)
	}

	users := r.Group("/api/users")
	{
		users.Use(middleware.JWTAuthMiddleware())
		users.PUT("/fcm-token", hb.UpdateFCMTokenHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking workflow.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware())
		bookingGroup.POST("", middleware.RequireRole(models.RolePatient), hb.CreateBookingHandler)
		bookingGroup.GET("", hb.ListBookingsHandler)
		bookingGroup.GET("/:id", hb.GetBookingHandler)
		bookingGroup.PATCH("/:id/status", hb.UpdateStatusHandler)
		bookingGroup.PATCH("/:id/assign", middleware.RequireRole(models.RoleAdmin), hb.AssignDriverHandler)
		bookingGroup.POST("/:id/feedback", middleware.RequireRole(models.RolePatient), hb.SubmitFeedbackHandler)
	}

	r.POST("/api/emergency-alert",
		middleware.JWTAuthMiddleware(),
		middleware.RequireRole(models.RolePatient),
		hb.EmergencyAlertHandler)
}

// RegisterDriverRoutes registers driver listing and driver self-service endpoints.
func RegisterDriverRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/drivers")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.ListDriversHandler)
		api.GET("/nearby", middleware.RequireRole(models.RoleAdmin), hb.NearbyDriversHandler)
		api.PATCH("/location", middleware.RequireRole(models.RoleDriver), hb.UpdateLocationHandler)
		api.PATCH("/availability", middleware.RequireRole(models.RoleDriver), hb.SetAvailabilityHandler)
	}
}

// RegisterDirectoryRoutes registers hospital, notification and analytics endpoints.
func RegisterDirectoryRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	hospitals := r.Group("/api/hospitals")
	{
		hospitals.Use(middleware.JWTAuthMiddleware())
		hospitals.GET("", hb.ListHospitalsHandler)
		hospitals.POST("", middleware.RequireRole(models.RoleAdmin), hb.CreateHospitalHandler)
	}

	notifications := r.Group("/api/notifications")
	{
		notifications.Use(middleware.JWTAuthMiddleware())
		notifications.GET("", hb.ListNotificationsHandler)
		notifications.PATCH("/:id/read", hb.MarkReadHandler)
	}

	r.GET("/api/analytics/dashboard",
		middleware.JWTAuthMiddleware(),
		middleware.RequireRole(models.RoleAdmin),
		hb.DashboardHandler)
}

// RegisterRealtimeRoutes registers the websocket upgrade endpoint.
func RegisterRealtimeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/ws", middleware.WebsocketAuthMiddleware(), hb.WebsocketHandler)
}

// RegisterHealthRoute registers the health check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/api/health", handlers.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// CORS returns the cross-origin policy for the given origins.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}

// RegisterRoutes wires every route group onto r.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	RegisterHealthRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterDriverRoutes(r, hb)
	RegisterDirectoryRoutes(r, hb)
	RegisterRealtimeRoutes(r, hb)
}
