package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/propuestas-api/internal/models"
	"github.com/propuestas-api/internal/service"
	"github.com/propuestas-api/pkg/response"
)

const (
	// ContextKeyUser is the key for the resolved user in gin context
	ContextKeyUser = "current_user"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware rejects requests without a valid bearer token. The
// token's user must still exist; a stale token for a deleted account
// is unauthorized.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "not authorized to access this route")
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		user, err := authService.GetUserByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "user no longer exists")
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user when a valid token is
// present and continues anonymously otherwise. For routes whose
// response differs for authenticated callers without requiring auth.
func OptionalAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if ok {
			if claims, err := authService.ValidateToken(tokenString); err == nil {
				if user, err := authService.GetUserByID(claims.UserID); err == nil {
					c.Set(ContextKeyUser, user)
				}
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the gin context,
// or nil on anonymous requests
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	return v.(*models.User)
}
