// Package metrics exposes Prometheus instrumentation for layout, rendering
// and interactive sessions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each
// collector has its own registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	LayoutDuration  *prometheus.HistogramVec
	Ticks           *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
	Exports         prometheus.Counter
	IntegrityErrors *prometheus.CounterVec
	Sessions        prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// NewCollector creates a collector with the given namespace. Go runtime and
// process metrics are registered alongside.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		LayoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Time from layout start until the layout settled",
				Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"strategy"},
		),
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layout_ticks_total",
				Help:      "Total number of layout iterations run by interactive views",
			},
			[]string{"strategy"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Scene composition and encoding time",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		Exports: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of SVG exports",
			},
		),
		IntegrityErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "integrity_errors_total",
				Help:      "Records rejected or corrected while loading graph data",
			},
			[]string{"kind"},
		),
		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of connected interactive sessions",
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		c.LayoutDuration,
		c.Ticks,
		c.RenderDuration,
		c.Exports,
		c.IntegrityErrors,
		c.Sessions,
		c.HTTPRequests,
		c.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveLayout(strategy string, d time.Duration) {
	c.LayoutDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (c *Collector) IncTicks(strategy string) {
	c.Ticks.WithLabelValues(strategy).Inc()
}

func (c *Collector) ObserveRender(format string, d time.Duration) {
	c.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (c *Collector) IncExports() { c.Exports.Inc() }

func (c *Collector) AddIntegrityErrors(kind string, n int) {
	if n > 0 {
		c.IntegrityErrors.WithLabelValues(kind).Add(float64(n))
	}
}

func (c *Collector) SessionOpened() { c.Sessions.Inc() }
func (c *Collector) SessionClosed() { c.Sessions.Dec() }

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
