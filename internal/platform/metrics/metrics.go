package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chairlinked"

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SavesTotal      *prometheus.CounterVec
	AutosavesTotal  *prometheus.CounterVec
	GenerationTotal *prometheus.CounterVec
	ClientErrors    *prometheus.CounterVec
	PublishesTotal  *prometheus.CounterVec
}

// New registers the API metrics on a dedicated registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests served",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SavesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demo_saves_total",
			Help:      "Explicit demo saves by outcome",
		}, []string{"outcome"}), // e.g. 'success', 'requires_auth', 'invalid', 'in_flight', 'failed'
		AutosavesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_autosaves_total",
			Help:      "Editor draft autosaves by outcome",
		}, []string{"outcome"}),
		GenerationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_generations_total",
			Help:      "Content generation requests by resulting source",
		}, []string{"source"}),
		ClientErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failures of the AI text and image curation clients",
		}, []string{"client"}),
		PublishesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demo_publishes_total",
			Help:      "Demo publish attempts by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveRequest records one completed HTTP request. Its signature matches
// observability.RequestObserver.
func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

func (m *Metrics) IncSave(outcome string) {
	if m == nil {
		return
	}
	m.SavesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAutosave(outcome string) {
	if m == nil {
		return
	}
	m.AutosavesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncGeneration(source string) {
	if m == nil {
		return
	}
	m.GenerationTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) IncClientError(client string) {
	if m == nil {
		return
	}
	m.ClientErrors.WithLabelValues(client).Inc()
}

func (m *Metrics) IncPublish(outcome string) {
	if m == nil {
		return
	}
	m.PublishesTotal.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
