package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/auth"
	"github.com/unitracer/backend/pkg/response"
)

// RateLimit returns a fixed-window rate limiter keyed per client per route.
// Authenticated clients are keyed by user ID, anonymous ones by IP. When
// Redis is unreachable the request is allowed through; the limiter is a
// throttle, not a correctness guard.
func RateLimit(client *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		subject := c.ClientIP()
		if claims := auth.ClaimsFromContext(c); claims != nil {
			subject = claims.UserID.String()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), subject)

		ctx := c.Request.Context()
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}
		if count > int64(limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, response.Body{Success: false, Error: "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
