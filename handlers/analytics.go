package handlers

import (
	"net/http"

	"ambulink/services/analytics"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Service analytics.AnalyticsService
}

func NewAnalyticsHandler(service analytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service}
}

// DashboardHandler handles GET /api/analytics/dashboard.
func (h *AnalyticsHandler) DashboardHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	d, err := h.Service.Dashboard(c.Request.Context(), actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
