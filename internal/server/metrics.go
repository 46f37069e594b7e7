package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stack-advisor/internal/model"
)

// metrics holds the collectors of one server. Each server owns its registry.
type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	findingsTotal    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
		findingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_validation_findings_total",
				Help: "Total number of validation findings by level",
			},
			[]string{"level"},
		),
	}
}

// middleware records rate, errors and duration per route.
// Unmatched routes are labelled "unmatched" to keep cardinality bounded.
func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) observeFindings(summary *model.FindingSummary) {
	if summary == nil {
		return
	}
	m.findingsTotal.WithLabelValues(string(model.SeverityWarn)).Add(float64(summary.WarnCount))
	m.findingsTotal.WithLabelValues(string(model.SeverityError)).Add(float64(summary.ErrorCount))
}
