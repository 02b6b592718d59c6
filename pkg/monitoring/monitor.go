package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coverage_snapshot_duration_seconds",
			Help:    "Time spent computing a coverage snapshot",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
	)

	SnapshotDegraded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coverage_snapshot_degraded_total",
			Help: "Snapshot computations that fell back to the cached copy",
		},
	)

	GapFillCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gap_fill_created_total",
			Help: "Entities created by the gap filler",
		},
		[]string{"entity"},
	)

	GapFillSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gap_fill_skipped_modules_total",
			Help: "Modules skipped due to lookup failures",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SnapshotDuration)
	prometheus.MustRegister(SnapshotDegraded)
	prometheus.MustRegister(GapFillCreated)
	prometheus.MustRegister(GapFillSkipped)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
