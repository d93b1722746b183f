package handlers

import (
	"ambulink/middleware"
	"ambulink/models"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request logger from the Gin context or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// currentActor returns the authenticated caller or writes a 401.
func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.RespondError(c, utils.NewAuthenticationError("authentication required"))
		return models.Actor{}, false
	}
	return actor, true
}

// bindJSON decodes the request body and writes a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		getLogger(c).Debug("invalid request body", zap.Error(err))
		utils.RespondError(c, utils.NewValidationError("invalid input: %v", err))
		return false
	}
	return true
}
