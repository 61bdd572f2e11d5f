package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/sigil/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sigilChallengesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sigil_challenges_issued_total",
		Help: "Total login challenges issued.",
	})

	sigilVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigil_verifications_total",
		Help: "Total signature verifications by chain type and outcome.",
	}, []string{"chain", "outcome"})

	sigilRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigil_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	sigilRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigil_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		sigilRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		sigilRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func recordChallengeIssued() {
	sigilChallengesIssuedTotal.Inc()
}

func recordVerification(chainType core.ChainType, result core.VerificationResult) {
	outcome := "success"
	if !result.Success {
		outcome = string(result.Reason)
	}
	sigilVerificationsTotal.WithLabelValues(chainType.String(), outcome).Inc()
}
