package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carouselkit"

// Metrics holds the prometheus collectors of one process. Each instance
// owns its registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	slidesTotal      *prometheus.CounterVec
	slideDuration    prometheus.Histogram
	exportsTotal     *prometheus.CounterVec
	exportDuration   *prometheus.HistogramVec
	exportSlides     prometheus.Histogram
	generationsTotal *prometheus.CounterVec
	generationTime   *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	wsConnections    prometheus.Gauge
}

// NewMetrics creates and registers all collectors, including the Go
// runtime and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		slidesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "slides_rasterized_total",
			Help:      "Slides rasterized by the export pipeline",
		}, []string{"status"}),
		slideDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "slide_duration_seconds",
			Help:      "Time to rasterize one slide",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		exportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "archives_total",
			Help:      "Archives produced, by format and status",
		}, []string{"format", "status"}),
		exportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "archive_duration_seconds",
			Help:      "Time to produce an archive",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"format"}),
		exportSlides: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "archive_slides",
			Help:      "Slides per exported archive",
			Buckets:   []float64{1, 3, 5, 7, 10, 15, 20},
		}),
		generationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "calls_total",
			Help:      "Content generator calls, by operation and status",
		}, []string{"operation", "status"}),
		generationTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "call_duration_seconds",
			Help:      "Content generator call latency",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 90},
		}, []string{"operation"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 30},
		}, []string{"method", "route"}),
		wsConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "websocket_connections",
			Help:      "Open websocket connections",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveSlide records one rasterization
func (m *Metrics) ObserveSlide(d time.Duration, err error) {
	m.slidesTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.slideDuration.Observe(d.Seconds())
	}
}

// ObserveExport records one archive
func (m *Metrics) ObserveExport(format string, slides int, d time.Duration, err error) {
	m.exportsTotal.WithLabelValues(format, status(err)).Inc()
	if err == nil {
		m.exportDuration.WithLabelValues(format).Observe(d.Seconds())
		m.exportSlides.Observe(float64(slides))
	}
}

// ObserveGeneration records one content generator call
func (m *Metrics) ObserveGeneration(operation string, d time.Duration, err error) {
	m.generationsTotal.WithLabelValues(operation, status(err)).Inc()
	m.generationTime.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveRequest records one HTTP request. route is the mux template, not
// the raw path, to keep cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// WebSocketOpened increments the open connection gauge
func (m *Metrics) WebSocketOpened() {
	m.wsConnections.Inc()
}

// WebSocketClosed decrements the open connection gauge
func (m *Metrics) WebSocketClosed() {
	m.wsConnections.Dec()
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
