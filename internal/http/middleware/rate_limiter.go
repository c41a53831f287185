package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter throttles requests per client IP using a fixed window
// counter in Redis. When Redis is unreachable requests are let through.
type RateLimiter struct {
	client *redis.Client
	logger *zap.Logger
	max    int64
	window time.Duration
	prefix string
}

// NewRateLimiter creates a rate limiter allowing max requests per window.
func NewRateLimiter(client *redis.Client, logger *zap.Logger, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: logger,
		max:    int64(max),
		window: window,
		prefix: "ratelimit:auth",
	}
}

// Limit returns the gin middleware enforcing the limit.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", rl.prefix, c.ClientIP())
		ctx := c.Request.Context()

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
				rl.logger.Warn("rate limiter expire failed", zap.Error(err))
			}
		}

		if count > rl.max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests from this IP, please try again later",
			})
			return
		}

		c.Next()
	}
}
