package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	evaluations  *prometheus.CounterVec
	outboxSent   *prometheus.CounterVec
	expired      prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "staybook_booking_evaluations_total",
			Help: "Booking evaluations by outcome.",
		}, []string{"outcome"}),
		outboxSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "staybook_outbox_publish_total",
			Help: "Outbox relay publish attempts by result.",
		}, []string{"result"}),
		expired: factory.NewCounter(prometheus.CounterOpts{
			Name: "staybook_pending_expired_total",
			Help: "Pending bookings cancelled by the expiry job.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "staybook_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staybook_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveEvaluation(outcome string) {
	m.evaluations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePublish(result string) {
	m.outboxSent.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveExpired(n int) {
	m.expired.Add(float64(n))
}

// Registry exposes the collectors for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HTTP records request counts and latency per matched route.
func (m *Metrics) HTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
