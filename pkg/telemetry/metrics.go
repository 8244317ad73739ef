package telemetry

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/keyed"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// MetricsConfig configures the Prometheus metrics observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and node durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a reactive.Observer exporting Prometheus metrics.
//
// Metrics collected:
//   - reactor_flushes_total: Counter of flushes by status
//   - reactor_flush_duration_seconds: Histogram of flush duration
//   - reactor_flush_waves: Histogram of waves per flush
//   - reactor_flush_errors_total: Counter of failed flushes by error code
//   - reactor_node_runs_total: Counter of node runs by kind
//   - reactor_node_duration_seconds: Histogram of node run duration by kind
//   - reactor_dropped_effects_total: Counter of effects dropped after structural errors
//   - reactor_errors_captured_total: Counter of failures absorbed by boundaries, by code
//   - reactor_patches_total: Counter of keyed-list patches by operation
//   - reactor_live_nodes: Gauge of undisposed computation nodes
type Metrics struct {
	flushesTotal   *prometheus.CounterVec
	flushDuration  prometheus.Histogram
	flushWaves     prometheus.Histogram
	flushErrors    *prometheus.CounterVec
	nodeRuns       *prometheus.CounterVec
	nodeDuration   *prometheus.HistogramVec
	droppedEffects prometheus.Counter
	errorsCaptured *prometheus.CounterVec
	patches        *prometheus.CounterVec
	liveNodes      prometheus.Gauge
}

var _ reactive.Observer = (*Metrics)(nil)

// NewMetrics registers the metrics and returns the observer.
// Registering twice on the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		flushesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushWaves: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_waves",
			Help:        "Number of effect waves per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 8, 13, 21},
		}),

		flushErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_errors_total",
			Help:        "Total number of flushes aborted by an error",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		nodeRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "node_runs_total",
			Help:        "Total number of computation node runs",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		nodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "node_duration_seconds",
			Help:        "Computation node run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		droppedEffects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dropped_effects_total",
			Help:        "Total number of queued effects dropped after a structural error",
			ConstLabels: config.ConstLabels,
		}),

		errorsCaptured: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_captured_total",
			Help:        "Total number of failures absorbed by error boundaries",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		patches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of keyed-list patches",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		liveNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_nodes",
			Help:        "Number of undisposed computation nodes",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// FlushStarted implements reactive.Observer.
func (m *Metrics) FlushStarted() {}

// FlushFinished implements reactive.Observer.
func (m *Metrics) FlushFinished(stats reactive.FlushStats, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.flushErrors.WithLabelValues(codeOf(err)).Inc()
	}
	m.flushesTotal.WithLabelValues(status).Inc()
	m.flushDuration.Observe(stats.Duration.Seconds())
	m.flushWaves.Observe(float64(stats.Waves))
	if stats.Dropped > 0 {
		m.droppedEffects.Add(float64(stats.Dropped))
	}
}

// NodeRan implements reactive.Observer.
func (m *Metrics) NodeRan(kind reactive.NodeKind, d time.Duration) {
	m.nodeRuns.WithLabelValues(kind.String()).Inc()
	m.nodeDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}

// ErrorCaptured implements reactive.Observer.
func (m *Metrics) ErrorCaptured(_ string, err error) {
	m.errorsCaptured.WithLabelValues(codeOf(err)).Inc()
}

// RecordPatches counts the patches of one reconciliation.
func (m *Metrics) RecordPatches(stats keyed.Stats) {
	if stats.Created > 0 {
		m.patches.WithLabelValues(keyed.OpCreate.String()).Add(float64(stats.Created))
	}
	if stats.Moved > 0 {
		m.patches.WithLabelValues(keyed.OpMove.String()).Add(float64(stats.Moved))
	}
	if stats.Removed > 0 {
		m.patches.WithLabelValues(keyed.OpRemove.String()).Add(float64(stats.Removed))
	}
}

// SetLiveNodes records the runtime's live node count.
func (m *Metrics) SetLiveNodes(n int) {
	m.liveNodes.Set(float64(n))
}

// codeOf returns the error code of err, or "unknown".
func codeOf(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return "unknown"
}
