package middleware

import (
	"net/http"

	"ambulink/models"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects callers whose role is not listed. It must run after
// JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Insufficient authorization"})
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Access denied for role " + string(actor.Role)})
	}
}
