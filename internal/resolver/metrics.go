package resolver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/intelliot/payid-core/pkg/payid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	payidResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payid_resolutions_total",
		Help: "Total PayID resolutions by payment network and outcome.",
	}, []string{"network", "outcome"})

	payidResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payid_resolution_duration_seconds",
		Help:    "Upstream PayID lookup duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"network"})

	payidHTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payid_http_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})
)

// networkLabel keeps label cardinality bounded: unknown networks share "other".
func networkLabel(n payid.PaymentNetwork) string {
	if n.IsKnown() {
		return string(n)
	}
	return "other"
}

func recordResolution(network payid.PaymentNetwork, outcome string, elapsed time.Duration) {
	label := networkLabel(network)
	payidResolutionsTotal.WithLabelValues(label, outcome).Inc()
	if elapsed > 0 {
		payidResolutionDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		payidHTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
