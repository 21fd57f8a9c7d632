package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hirelane/api/internal/models"
	"hirelane/api/internal/service"
)

func RequireAction(authz service.Authorizer, action service.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("current_user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_user"})
			return
		}

		if !authz.Can(user, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
