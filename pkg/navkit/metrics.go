package navkit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for a Navigator.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "navkit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for a Navigator. A nil *Metrics
// is valid and records nothing, so metrics stay strictly opt-in.
type Metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	debounceDrops      prometheus.Counter
	suppressedTotal    prometheus.Counter
	notificationsTotal prometheus.Counter
	prefetchTotal      prometheus.Counter
}

// NewMetrics creates and registers the navigation metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations performed",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		debounceDrops: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_debounced_total",
			Help:        "Navigations dropped by the debounce window",
			ConstLabels: config.ConstLabels,
		}),

		suppressedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "traversals_suppressed_total",
			Help:        "Traversal notifications suppressed by the programmatic guard",
			ConstLabels: config.ConstLabels,
		}),

		notificationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Subscriber notification rounds delivered",
			ConstLabels: config.ConstLabels,
		}),

		prefetchTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "prefetch_hints_total",
			Help:        "Prefetch hints issued",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) navigation(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.navigationsTotal.WithLabelValues(kind).Inc()
	if d > 0 {
		m.navigationDuration.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func (m *Metrics) debounceDropped() {
	if m == nil {
		return
	}
	m.debounceDrops.Inc()
}

func (m *Metrics) traversalSuppressed() {
	if m == nil {
		return
	}
	m.suppressedTotal.Inc()
}

func (m *Metrics) notified() {
	if m == nil {
		return
	}
	m.notificationsTotal.Inc()
}

func (m *Metrics) prefetched() {
	if m == nil {
		return
	}
	m.prefetchTotal.Inc()
}
