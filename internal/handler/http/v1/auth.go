package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/rapid_response_hub/internal/auth"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/sirupsen/logrus"
)

const actorKey = "actor"

// AuthMiddleware - middleware для аутентификации по JWT в заголовке Authorization
func AuthMiddleware(tokens *auth.TokenManager, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			log.WithField("request_id", c.GetString(requestIDKey)).Warn("Bearer token missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "No token provided, authorization denied"})
			return
		}

		actor, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Warn("Invalid token provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Token is not valid", Error: err.Error()})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireAdmin пропускает только администраторов. Ставится после AuthMiddleware
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
			return
		}
		if !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Access denied. Admin only."})
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) (models.Actor, bool) {
	value, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

// mustActor достает пользователя, установленного AuthMiddleware
func mustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
	}
	return actor, ok
}
