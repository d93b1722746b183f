package handlers

import (
	"net/http"

	"ambulink/models"
	"ambulink/services/hospital"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	Service hospital.HospitalService
}

func NewHospitalHandler(service hospital.HospitalService) *HospitalHandler {
	return &HospitalHandler{Service: service}
}

// ListHospitalsHandler handles GET /api/hospitals?lat&lng&radiusKm&type.
func (h *HospitalHandler) ListHospitalsHandler(c *gin.Context) {
	near, err := queryCoordinates(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	radius, err := queryFloat(c, "radiusKm")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	list, err := h.Service.List(c.Request.Context(), models.HospitalQuery{
		Near:     near,
		RadiusKm: radius,
		Type:     models.HospitalType(c.Query("type")),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateHospitalHandler handles POST /api/hospitals.
func (h *HospitalHandler) CreateHospitalHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input models.Hospital
	if !bindJSON(c, &input) {
		return
	}

	created, err := h.Service.Create(c.Request.Context(), actor, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
