// Package metrics exports renderer, suggestion and command observations to
// Prometheus.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

const defaultNamespace = "lore"

// Prometheus implements the render and suggestion metric contracts.
type Prometheus struct {
	renderDuration prometheus.Histogram
	sanitized      *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	stale          prometheus.Counter
	commands       *prometheus.HistogramVec
	gatherer       prometheus.Gatherer
}

var (
	_ interfaces.RenderMetrics     = (*Prometheus)(nil)
	_ interfaces.SuggestionMetrics = (*Prometheus)(nil)
)

// NewPrometheus registers the collectors on registry. A nil registry gets a
// private one so tests and the CLI do not touch the global default.
func NewPrometheus(registry *prometheus.Registry, namespace string) (*Prometheus, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = defaultNamespace
	}

	m := &Prometheus{
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Time spent rendering portable text.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		sanitized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "sanitized_total",
			Help:      "Values rejected by the renderer sanitizer.",
		}, []string{"reason"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "suggestion",
			Name:      "search_duration_seconds",
			Help:      "Candidate search latency by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "suggestion",
			Name:      "stale_responses_total",
			Help:      "Search responses discarded because a newer request was issued.",
		}),
		commands: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "duration_seconds",
			Help:      "Command execution latency by command and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command", "status"}),
		gatherer: registry,
	}

	for _, c := range []prometheus.Collector{m.renderDuration, m.sanitized, m.searchDuration, m.stale, m.commands} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) ObserveRenderDuration(duration time.Duration) {
	m.renderDuration.Observe(duration.Seconds())
}

func (m *Prometheus) IncrementSanitized(reason string) {
	m.sanitized.WithLabelValues(reason).Inc()
}

func (m *Prometheus) ObserveSearchDuration(outcome string, duration time.Duration) {
	m.searchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Prometheus) IncrementStaleResponse() {
	m.stale.Inc()
}

// ObserveCommand records one command execution.
func (m *Prometheus) ObserveCommand(command, status string, duration time.Duration) {
	m.commands.WithLabelValues(command, status).Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
