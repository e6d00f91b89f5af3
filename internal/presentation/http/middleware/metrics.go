package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tillpoint_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tillpoint_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	settlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tillpoint_settlements_total",
			Help: "Total number of order settlement attempts by outcome",
		},
		[]string{"outcome"},
	)

	refundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tillpoint_refunds_total",
			Help: "Total number of refunds issued",
		},
	)
)

// MetricsMiddleware records request counts and latencies per route
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// RecordSettlement increments the settlement counter for an outcome
func RecordSettlement(outcome string) {
	settlementsTotal.WithLabelValues(outcome).Inc()
}

// RecordRefund increments the refund counter
func RecordRefund() {
	refundsTotal.Inc()
}
