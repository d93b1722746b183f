package handlers

import (
	"net/http"
	"strconv"

	"ambulink/services/notification"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(service notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// ListNotificationsHandler handles GET /api/notifications?limit=.
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			utils.RespondError(c, utils.NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = v
	}

	list, err := h.Service.ListForUser(c.Request.Context(), actor, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkReadHandler handles PATCH /api/notifications/:id/read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	n, err := h.Service.MarkRead(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
