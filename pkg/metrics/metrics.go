package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/ripple/pkg/element"
	"github.com/vango-dev/ripple/pkg/hydration"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "ripple").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the flush duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "ripple",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records runtime metrics. It implements scheduler.Observer and
// element.ResourceObserver.
type Collector struct {
	flushes        prometheus.Counter
	flushRounds    prometheus.Histogram
	flushDuration  prometheus.Histogram
	updates        *prometheus.CounterVec
	effects        prometheus.Counter
	listeners      prometheus.Gauge
	tasks          prometheus.Gauge
	tasksCancelled prometheus.Counter
	hydrations     *prometheus.CounterVec
	hydrationNodes *prometheus.CounterVec
	hydrationAttrs *prometheus.CounterVec
}

var (
	_ scheduler.Observer       = (*Collector)(nil)
	_ element.ResourceObserver = (*Collector)(nil)
)

// New creates a Collector and registers its metrics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Collector{
		flushes: counter("flushes_total", "Total number of scheduler flushes"),
		flushRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_rounds",
			Help:        "Number of update rounds per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 4, 8, 16, 32, 64},
		}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		updates:        counterVec("updates_total", "Total number of queued updates by outcome", "outcome"),
		effects:        counter("effects_total", "Total number of effects run"),
		listeners:      gauge("listeners_active", "Number of registered event callbacks"),
		tasks:          gauge("tasks_active", "Number of spawned tasks not yet cancelled"),
		tasksCancelled: counter("tasks_cancelled_total", "Total number of cancelled tasks"),
		hydrations:     counterVec("hydrations_total", "Total number of hydration passes by result", "result"),
		hydrationNodes: counterVec("hydration_nodes_total", "Nodes changed during hydration", "change"),
		hydrationAttrs: counterVec("hydration_attributes_total", "Attributes changed during hydration", "change"),
	}
}

// ObserveFlush implements scheduler.Observer.
func (c *Collector) ObserveFlush(r scheduler.FlushReport) {
	c.flushes.Inc()
	c.flushRounds.Observe(float64(r.Rounds))
	c.flushDuration.Observe(r.Duration.Seconds())
	c.updates.WithLabelValues("applied").Add(float64(r.Applied))
	c.updates.WithLabelValues("dropped").Add(float64(r.Dropped))
	c.updates.WithLabelValues("deferred").Add(float64(r.Deferred))
	c.effects.Add(float64(r.Effects))
}

// ListenerAdded implements element.ResourceObserver.
func (c *Collector) ListenerAdded() { c.listeners.Inc() }

// ListenerRemoved implements element.ResourceObserver.
func (c *Collector) ListenerRemoved() { c.listeners.Dec() }

// TaskStarted implements element.ResourceObserver.
func (c *Collector) TaskStarted() { c.tasks.Inc() }

// TaskCancelled implements element.ResourceObserver.
func (c *Collector) TaskCancelled() {
	c.tasks.Dec()
	c.tasksCancelled.Inc()
}

// ObserveHydration records the outcome of a hydration pass.
func (c *Collector) ObserveHydration(s hydration.Stats) {
	result := "repaired"
	switch {
	case s.ExactMatch():
		result = "exact"
	case s.OnlyWhitespaceDiffs():
		result = "whitespace"
	}
	c.hydrations.WithLabelValues(result).Inc()
	c.hydrationNodes.WithLabelValues("added").Add(float64(s.NodesAdded))
	c.hydrationNodes.WithLabelValues("removed").Add(float64(s.NodesRemoved))
	c.hydrationNodes.WithLabelValues("empty_text_removed").Add(float64(s.EmptyTextRemoved))
	c.hydrationAttrs.WithLabelValues("set").Add(float64(s.AttributesSet))
	c.hydrationAttrs.WithLabelValues("removed").Add(float64(s.AttributesRemoved))
}
