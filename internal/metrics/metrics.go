package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeCancelled = "cancelled"
	OutcomeCached    = "cached"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	Lookups          *prometheus.CounterVec
	LookupDuration   *prometheus.HistogramVec
	DebouncedInputs  prometheus.Counter
	Aggregations     *prometheus.CounterVec
	AggregationItems *prometheus.CounterVec
}

// NewMetrics creates metrics on a private registry so several instances can coexist
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Remote lookups by kind (places, fares) and outcome",
		}, []string{"kind", "outcome"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Latency of remote lookups that reached the network",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		DebouncedInputs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "typeahead_superseded_total",
			Help:      "Keystrokes whose pending lookup was superseded before it fired",
		}),
		Aggregations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Deal aggregation runs by outcome",
		}, []string{"outcome"}),
		AggregationItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_items_total",
			Help:      "Per-destination results of deal aggregation",
		}, []string{"outcome"}),
	}
}

// ObserveLookup records one remote lookup. A nil receiver is a no-op.
func (m *Metrics) ObserveLookup(kind, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(kind, outcome).Inc()
	if outcome != OutcomeCached {
		m.LookupDuration.WithLabelValues(kind).Observe(took.Seconds())
	}
}

// ObserveSuperseded counts a debounced keystroke that never reached the network
func (m *Metrics) ObserveSuperseded() {
	if m == nil {
		return
	}
	m.DebouncedInputs.Inc()
}

// ObserveAggregation records a finished (or cancelled) aggregation run
func (m *Metrics) ObserveAggregation(outcome string, prices, errors int) {
	if m == nil {
		return
	}
	m.Aggregations.WithLabelValues(outcome).Inc()
	m.AggregationItems.WithLabelValues(OutcomeSuccess).Add(float64(prices))
	m.AggregationItems.WithLabelValues(OutcomeFailure).Add(float64(errors))
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
