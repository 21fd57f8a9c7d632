package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hirelane/api/internal/config"
	"hirelane/api/internal/repository"
	"hirelane/api/internal/security"
)

// Auth accepts the session either as the cookie set at sign-in or as a
// bearer token, for clients that store it themselves.
func Auth(cfg *config.AppConfig, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := sessionToken(c, cfg.Security.CookieName)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := security.ParseSession(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		}

		c.Set("session_token", tokenStr)
		c.Set("session_claims", *claims)
		c.Set("current_user", user)

		c.Next()
	}
}

// OptionalAuth resolves the user when a valid session is present and
// passes through anonymously otherwise. Guest application submission
// uses it.
func OptionalAuth(cfg *config.AppConfig, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := sessionToken(c, cfg.Security.CookieName)
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := security.ParseSession(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set("session_token", tokenStr)
		c.Set("session_claims", *claims)
		c.Set("current_user", user)

		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
