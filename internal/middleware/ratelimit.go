package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc extracts the client key (defaults to ClientIP)
	KeyFunc func(c *gin.Context) string
	// Message returned to throttled clients
	Message string
}

// DefaultRateLimitConfig returns sensible defaults for general API traffic
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:   100,
		Window:  time.Minute,
		KeyFunc: clientIPKey,
	}
}

// SubmissionRateLimitConfig limits referral creation per origin per
// window.
func SubmissionRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:   limit,
		Window:  window,
		KeyFunc: clientIPKey,
		Message: "Too many referral submissions, please try again later",
	}
}

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// fixedWindow tracks one client's request count within its current window
type fixedWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter applies per-key fixed-window counting, matching the
// semantics of the Redis-backed limiter it substitutes for: the Nth+1
// request inside a window is rejected no matter how the requests are
// spaced.
type RateLimiter struct {
	windows map[string]*fixedWindow
	config  RateLimitConfig
	mu      sync.Mutex
}

// NewRateLimiter creates a new in-process rate limiting middleware
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}

	rl := &RateLimiter{
		windows: make(map[string]*fixedWindow),
		config:  config,
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		allowed, retryAfter := rl.Allow(key)
		if !allowed {
			RecordRateLimitExceeded(c.FullPath(), c.Request.Method)

			msg := config.Message
			if msg == "" {
				msg = "rate limit exceeded"
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":        "RATE_LIMITED",
				"message":     msg,
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}

// Allow counts one request against the key's current window and reports
// whether it fits, with seconds until the window resets when it does not.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || !now.Before(w.resetAt) {
		rl.windows[key] = &fixedWindow{count: 1, resetAt: now.Add(rl.config.Window)}
		return true, 0
	}
	if w.count < rl.config.Limit {
		w.count++
		return true, 0
	}
	return false, int(w.resetAt.Sub(now).Seconds()) + 1
}
