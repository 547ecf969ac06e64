package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/unitracer/backend/internal/auth"
	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
// Superadmin satisfies every requirement.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := auth.ClaimsFromContext(c)
		if claims == nil {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if !models.HasRole(claims.Role, roles...) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
