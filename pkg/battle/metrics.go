package battle

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the battle-core Prometheus instrumentation: dispatch
// volume, suppression-chain activity, program-cache effectiveness, and
// script failures, repointed from the teacher's HTTP/WebSocket-shaped
// pkg/server/metrics.go at the Effect Dispatch Core's own hot paths.
type Metrics struct {
	dispatchTotal      *prometheus.CounterVec
	suppressionChecks  *prometheus.CounterVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	scriptFailures     *prometheus.CounterVec
	candidatesPerEvent prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates and registers the battle-core metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "battler_dispatch_total",
				Help: "Total number of event dispatches by event name and shape",
			},
			[]string{"event", "shape"},
		),
		suppressionChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "battler_suppression_checks_total",
				Help: "Total number of suppression state-event checks by kind and outcome",
			},
			[]string{"kind", "suppressed"},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "battler_program_cache_hits_total",
				Help: "Total number of parsed-program cache hits",
			},
		),
		cacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "battler_program_cache_misses_total",
				Help: "Total number of parsed-program cache misses (parse-on-demand)",
			},
		),
		scriptFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "battler_script_failures_total",
				Help: "Total number of FX parse/runtime failures by effect kind",
			},
			[]string{"kind"},
		),
		candidatesPerEvent: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "battler_dispatch_candidates",
				Help:    "Number of surviving candidates per dispatch after suppression filtering",
				Buckets: prometheus.LinearBuckets(0, 1, 10),
			},
		),
		registry: registry,
	}

	m.registry.MustRegister(
		m.dispatchTotal,
		m.suppressionChecks,
		m.cacheHits,
		m.cacheMisses,
		m.scriptFailures,
		m.candidatesPerEvent,
	)
	return m
}

// RecordDispatch records one Dispatch call for event under the given shape.
func (m *Metrics) RecordDispatch(event string, shape EventShape, candidateCount int) {
	shapeLabel := "broadcast"
	if shape == ShapeState {
		shapeLabel = "state"
	}
	m.dispatchTotal.WithLabelValues(event, shapeLabel).Inc()
	m.candidatesPerEvent.Observe(float64(candidateCount))
}

// RecordSuppressionCheck records one suppression state-event resolution.
func (m *Metrics) RecordSuppressionCheck(kind string, suppressed bool) {
	label := "false"
	if suppressed {
		label = "true"
	}
	m.suppressionChecks.WithLabelValues(kind, label).Inc()
}

// RecordCacheHit/RecordCacheMiss record parsed-program cache effectiveness.
func (m *Metrics) RecordCacheHit()  { m.cacheHits.Inc() }
func (m *Metrics) RecordCacheMiss() { m.cacheMisses.Inc() }

// RecordScriptFailure records a parse or runtime failure for the given
// effect kind, the counter backing the diagnostic sink's "recorded in a
// diagnostic sink" contract (spec.md §7).
func (m *Metrics) RecordScriptFailure(kind EffectKind) {
	m.scriptFailures.WithLabelValues(kind.String()).Inc()
}

// Registry exposes the underlying *prometheus.Registry for an HTTP
// /metrics handler in pkg/server.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
