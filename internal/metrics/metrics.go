package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Domain metrics
	ReferralsCreatedTotal prometheus.CounterVec
	ClicksRecordedTotal   prometheus.CounterVec
	FeedbackRecordedTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limited requests",
				},
				[]string{"endpoint", "method"},
			),
			ReferralsCreatedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "referrals_created_total",
					Help: "Total number of referral submissions accepted",
				},
				[]string{"platform", "kind"},
			),
			ClicksRecordedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "referral_clicks_recorded_total",
					Help: "Total number of referral clicks attributed",
				},
				[]string{"platform"},
			),
			FeedbackRecordedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "referral_feedback_recorded_total",
					Help: "Total number of feedback entries recorded",
				},
				[]string{"outcome"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it on first use
func Get() *Metrics {
	return Initialize()
}
