package middleware

import (
	"net/http"
	"strings"

	"ambulink/models"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// bearerToken reads the token from the Authorization header. Websocket
// clients that cannot set headers may pass it as ?token= instead.
func bearerToken(c *gin.Context, allowQuery bool) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if allowQuery {
		return strings.TrimSpace(c.Query("token"))
	}
	return ""
}

func authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c, allowQuery)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing or invalid Authorization header"})
			return
		}

		actor, err := utils.ActorFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Invalid token"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// JWTAuthMiddleware resolves the bearer token into a models.Actor.
func JWTAuthMiddleware() gin.HandlerFunc {
	return authenticate(false)
}

// WebsocketAuthMiddleware also accepts the token as a query parameter.
func WebsocketAuthMiddleware() gin.HandlerFunc {
	return authenticate(true)
}

// ActorFromContext returns the caller set by the auth middleware.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
