package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/refermarket/backend/internal/cache"
	"github.com/refermarket/backend/internal/logger"
	"go.uber.org/zap"
)

// RedisRateLimit creates a distributed fixed-window rate limiter backed
// by Redis so the cap holds across multiple server instances. When no
// Redis client is configured (nil), it falls back to the in-process
// fixed-window limiter.
func RedisRateLimit(redisClient *cache.RedisClient, config RateLimitConfig) gin.HandlerFunc {
	if redisClient == nil {
		return NewRateLimiter(config)
	}
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), config.KeyFunc(c))
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		val, err := redisClient.GetInt(ctx, key)
		if err != nil && !errors.Is(err, redis.Nil) {
			// A broken limiter must not open the endpoint to abuse
			logger.Log.Error("Rate limit check failed - rejecting request",
				zap.String("key", key),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "service temporarily unavailable",
			})
			return
		}

		if val >= int64(config.Limit) {
			RecordRateLimitExceeded(c.FullPath(), c.Request.Method)
			msg := config.Message
			if msg == "" {
				msg = "rate limit exceeded"
			}
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.Int("max_requests", config.Limit),
				zap.Int64("current_requests", val),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":        "RATE_LIMITED",
				"message":     msg,
				"retry_after": config.Window.Seconds(),
			})
			return
		}

		newVal, err := redisClient.IncrBy(ctx, key, 1)
		if err != nil {
			logger.Log.Error("Rate limit increment failed - rejecting request",
				zap.String("key", key),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "service temporarily unavailable",
			})
			return
		}

		// First request in this window starts the clock
		if newVal == 1 {
			if err := redisClient.Expire(ctx, key, config.Window); err != nil {
				logger.Log.Warn("Failed to set rate limit expiration",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}

		c.Next()
	}
}
