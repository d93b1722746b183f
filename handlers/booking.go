package handlers

import (
	"net/http"
	"strconv"

	"ambulink/models"
	"ambulink/services/booking"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(service booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: service}
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input models.BookingInput
	if !bindJSON(c, &input) {
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), actor, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("booking created", zap.String("bookingId", b.ID), zap.String("priority", string(b.Priority)))
	c.JSON(http.StatusCreated, b)
}

// ListBookingsHandler handles GET /api/bookings?role=&userId=&status=&limit=.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	query := booking.ListQuery{
		Role:   models.Role(c.Query("role")),
		UserID: c.Query("userId"),
		Status: models.BookingStatus(c.Query("status")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			utils.RespondError(c, utils.NewValidationError("limit must be a non-negative integer"))
			return
		}
		query.Limit = limit
	}

	list, err := h.Service.ListBookings(c.Request.Context(), actor, query)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	b, err := h.Service.GetBooking(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UpdateStatusHandler handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateStatusHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Status models.BookingStatus `json:"status"`
		Note   string               `json:"note"`
	}
	if !bindJSON(c, &input) {
		return
	}

	b, err := h.Service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), input.Status, input.Note)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AssignDriverHandler handles PATCH /api/bookings/:id/assign.
func (h *BookingHandler) AssignDriverHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		DriverID string `json:"driverId"`
	}
	if !bindJSON(c, &input) {
		return
	}

	b, err := h.Service.AssignDriver(c.Request.Context(), actor, c.Param("id"), input.DriverID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("driver assigned", zap.String("bookingId", b.ID), zap.String("driverId", b.DriverID))
	c.JSON(http.StatusOK, b)
}

// SubmitFeedbackHandler handles POST /api/bookings/:id/feedback.
func (h *BookingHandler) SubmitFeedbackHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !bindJSON(c, &input) {
		return
	}

	b, err := h.Service.SubmitFeedback(c.Request.Context(), actor, c.Param("id"), input.Rating, input.Comment)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// EmergencyAlertHandler handles POST /api/emergency-alert.
func (h *BookingHandler) EmergencyAlertHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Location models.Coordinates `json:"location"`
		Message  string             `json:"message"`
	}
	if !bindJSON(c, &input) {
		return
	}

	b, err := h.Service.CreateEmergencyAlert(c.Request.Context(), actor, input.Location, input.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Warn("emergency alert raised", zap.String("bookingId", b.ID), zap.String("patientId", actor.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Emergency alert sent successfully",
		"booking": b,
	})
}
