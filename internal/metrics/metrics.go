// Package metrics exposes Prometheus counters for the HTTP layer and the watch list store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector of the service. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram

	followAccepted prometheus.Counter
	followRejected prometheus.Counter
	unfollowed     prometheus.Counter
}

// New registers the collectors on a fresh registry together with the Go and process collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Tracks the number of HTTP requests.",
		}, []string{"method", "status"}),
		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Tracks the latencies for HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}),
		followAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "userswatch_follow_accepted_total",
			Help: "Watch list entries accepted by follow operations.",
		}),
		followRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "userswatch_follow_rejected_total",
			Help: "Follow targets dropped because they were unknown or not followable.",
		}),
		unfollowed: factory.NewCounter(prometheus.CounterOpts{
			Name: "userswatch_unfollow_total",
			Help: "Targets passed to unfollow operations.",
		}),
	}
}

func (m *Metrics) FollowAccepted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.followAccepted.Add(float64(n))
}

func (m *Metrics) FollowRejected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.followRejected.Add(float64(n))
}

func (m *Metrics) Unfollowed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.unfollowed.Add(float64(n))
}

// Middleware counts requests and observes their latency
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				// the error handler has not written the response yet
				status = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			m.requestsTotal.WithLabelValues(c.Request().Method, strconv.Itoa(status)).Inc()
			m.requestDuration.Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
