package handlers

import (
	"net/http"
	"strconv"

	"ambulink/models"
	"ambulink/services/user"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
)

type DriverHandler struct {
	Users user.UserService
}

func NewDriverHandler(users user.UserService) *DriverHandler {
	return &DriverHandler{Users: users}
}

// ListDriversHandler handles GET /api/drivers.
func (h *DriverHandler) ListDriversHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	drivers, err := h.Users.ListDrivers(c.Request.Context(), actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// NearbyDriversHandler handles GET /api/drivers/nearby?lat&lng&radiusKm.
func (h *DriverHandler) NearbyDriversHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	center, err := queryCoordinates(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if center == nil {
		utils.RespondError(c, utils.NewValidationError("lat and lng are required"))
		return
	}
	radius, err := queryFloat(c, "radiusKm")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	drivers, err := h.Users.NearbyDrivers(c.Request.Context(), actor, *center, radius)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// UpdateLocationHandler handles PATCH /api/drivers/location.
func (h *DriverHandler) UpdateLocationHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Location models.Coordinates `json:"location"`
	}
	if !bindJSON(c, &input) {
		return
	}

	if err := h.Users.UpdateLocation(c.Request.Context(), actor, input.Location); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location updated successfully"})
}

// SetAvailabilityHandler handles PATCH /api/drivers/availability.
func (h *DriverHandler) SetAvailabilityHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Available *bool `json:"available"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if input.Available == nil {
		utils.RespondError(c, utils.NewValidationError("available is required"))
		return
	}

	driver, err := h.Users.SetAvailability(c.Request.Context(), actor, *input.Available)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

// queryCoordinates reads optional lat/lng query parameters.
func queryCoordinates(c *gin.Context) (*models.Coordinates, error) {
	rawLat, rawLng := c.Query("lat"), c.Query("lng")
	if rawLat == "" && rawLng == "" {
		return nil, nil
	}
	if rawLat == "" || rawLng == "" {
		return nil, utils.NewValidationError("lat and lng must be given together")
	}
	coords, err := models.ParseCoordinates(rawLat + "," + rawLng)
	if err != nil {
		return nil, utils.NewValidationError("%v", err)
	}
	return &coords, nil
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, utils.NewValidationError("%s must be a non-negative number", key)
	}
	return v, nil
}
