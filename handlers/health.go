package handlers

import (
	"net/http"

	"ambulink/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the last dependency snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":       "OK",
		"message":      "Ambulance booking service is running",
		"dependencies": status,
	})
}
