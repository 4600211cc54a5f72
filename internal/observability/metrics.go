// Package observability exposes the Prometheus registry served on /metrics.
package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and the API's HTTP collectors.
type Metrics struct {
	registry  *prometheus.Registry
	handler   http.Handler
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	inFlight  prometheus.Gauge
	conflicts *prometheus.CounterVec
}

// NewMetrics builds the registry with request, in-flight and idempotency
// collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "odyssey_http_request_duration_seconds",
			Help:    "HTTP request duration per route.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "odyssey_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_idempotency_conflicts_total",
			Help: "Mutating requests rejected because their Idempotency-Key was already used.",
		}, []string{"module"}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.inFlight, m.conflicts)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency by chi route pattern, so
// /api/companies/7 and /api/companies/8 share a series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// IdempotencyConflict counts a replayed Idempotency-Key.
func (m *Metrics) IdempotencyConflict(module string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(module).Inc()
}

// EntityCounter reports how many entities the store holds, by kind.
type EntityCounter func(ctx context.Context) (map[string]int, error)

// WatchEntities exports count as odyssey_store_entities{kind}, read on every
// scrape.
func (m *Metrics) WatchEntities(count EntityCounter) error {
	return m.registry.Register(entityCollector{
		desc:  prometheus.NewDesc("odyssey_store_entities", "Entities held in the in-memory store, by kind.", []string{"kind"}, nil),
		count: count,
	})
}

// Registerer exposes the registry for package specific collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type entityCollector struct {
	desc  *prometheus.Desc
	count EntityCounter
}

func (c entityCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c entityCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	counts, err := c.count(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}
	for kind, n := range counts {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), kind)
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
