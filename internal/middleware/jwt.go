package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unitracer/backend/internal/auth"
	"github.com/unitracer/backend/pkg/response"
)

// JWT returns a middleware that validates the bearer token, rejects revoked
// tokens and stores claims in the gin context.
func JWT(jwtService *auth.JWTService, revoker *auth.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil || revoked {
				response.Unauthorized(c, "invalid or expired token")
				c.Abort()
				return
			}
		}
		auth.SetClaims(c, claims)
		c.Next()
	}
}
