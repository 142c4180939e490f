package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/refermarket/backend/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime).Seconds()
		// Numeric status as string so Grafana can match status=~"5.."
		statusStr := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
	}
}

// RecordRateLimitExceeded records a throttled request
func RecordRateLimitExceeded(endpoint, method string) {
	metrics.Get().RateLimitExceededTotal.WithLabelValues(endpoint, method).Inc()
}

// RecordReferralCreated records an accepted referral submission
func RecordReferralCreated(platform, kind string) {
	metrics.Get().ReferralsCreatedTotal.WithLabelValues(platform, kind).Inc()
}

// RecordClick records an attributed referral click
func RecordClick(platform string) {
	metrics.Get().ClicksRecordedTotal.WithLabelValues(platform).Inc()
}

// RecordFeedback records a feedback entry by outcome
func RecordFeedback(outcome string) {
	metrics.Get().FeedbackRecordedTotal.WithLabelValues(outcome).Inc()
}
