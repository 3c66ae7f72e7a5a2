// Package metrics exposes Prometheus metrics for a simulation run.
//
// A Collector subscribes to the simulation event bus and keeps counters for
// request and pool activity, gauges for the latest queue depth and pool size,
// and a histogram of request durations. There is no HTTP listener; the
// registry is written once to a text exposition file when the run ends.
package metrics

import (
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/lbsim/internal/event"
)

const namespace = "lbsim"

// Collector bundles the simulation metrics and the registry that owns them.
type Collector struct {
	registry *prometheus.Registry

	RequestsStarted   *prometheus.CounterVec
	RequestsCompleted prometheus.Counter
	RequestsBlocked   prometheus.Counter
	WorkersAdded      prometheus.Counter
	WorkersRemoved    prometheus.Counter

	QueueDepth prometheus.Gauge
	PoolSize   prometheus.Gauge

	RequestDurations prometheus.Histogram

	bus  *event.Bus
	subs []string
}

// New registers the simulation metrics against reg. A nil reg gets a fresh
// private registry so repeated runs in one process never collide.
func New(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{registry: reg}

	var err error
	if c.RequestsStarted, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_started_total",
		Help:      "Requests dispatched to a worker, labeled by job kind.",
	}, []string{"kind"}), "requests_started_total"); err != nil {
		return nil, err
	}
	if c.RequestsCompleted, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_completed_total",
		Help:      "Requests a worker finished processing.",
	}), "requests_completed_total"); err != nil {
		return nil, err
	}
	if c.RequestsBlocked, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_blocked_total",
		Help:      "Submissions rejected because the source address is blocked.",
	}), "requests_blocked_total"); err != nil {
		return nil, err
	}
	if c.WorkersAdded, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workers_added_total",
		Help:      "Workers created, including the initial pool.",
	}), "workers_added_total"); err != nil {
		return nil, err
	}
	if c.WorkersRemoved, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workers_removed_total",
		Help:      "Idle workers removed by scale-down.",
	}), "workers_removed_total"); err != nil {
		return nil, err
	}
	if c.QueueDepth, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Pending requests at the last status report.",
	}), "queue_depth"); err != nil {
		return nil, err
	}
	if c.PoolSize, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_size",
		Help:      "Workers currently in the pool.",
	}), "pool_size"); err != nil {
		return nil, err
	}
	if c.RequestDurations, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_cycles",
		Help:      "Processing time of completed requests, in cycles.",
		Buckets:   prometheus.LinearBuckets(0, 5, 11),
	}), "request_duration_cycles"); err != nil {
		return nil, err
	}

	return c, nil
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Attach subscribes the collector to every event on bus. Calling Attach again
// moves the subscription to the new bus.
func (c *Collector) Attach(bus *event.Bus) {
	c.Detach()
	c.bus = bus
	c.subs = append(c.subs, bus.SubscribeAll(c.Handle))
}

// Detach removes the collector's bus subscriptions.
func (c *Collector) Detach() {
	if c.bus == nil {
		return
	}
	for _, id := range c.subs {
		c.bus.Unsubscribe(id)
	}
	c.subs = nil
	c.bus = nil
}

// Handle updates metrics from a single simulation event. Unknown event types
// are ignored.
func (c *Collector) Handle(e event.Event) {
	switch ev := e.(type) {
	case event.WorkerAddedEvent:
		c.WorkersAdded.Inc()
		c.PoolSize.Inc()
	case event.WorkerRemovedEvent:
		c.WorkersRemoved.Inc()
		c.PoolSize.Dec()
	case event.RequestStartedEvent:
		c.RequestsStarted.WithLabelValues(ev.Request.Kind.String()).Inc()
	case event.RequestCompletedEvent:
		c.RequestsCompleted.Inc()
		c.RequestDurations.Observe(float64(ev.Request.Duration))
	case event.RequestBlockedEvent:
		c.RequestsBlocked.Inc()
	case event.StatusEvent:
		c.QueueDepth.Set(float64(ev.QueueLen))
		c.PoolSize.Set(float64(ev.PoolSize))
	case event.SummaryEvent:
		c.QueueDepth.Set(float64(ev.Summary.FinalQueue))
		c.PoolSize.Set(float64(ev.Summary.FinalWorkers))
	}
}

// WriteFile writes the registry in the Prometheus text format to path on fs.
// The file is written under a temporary name and renamed into place, so a
// reader never sees a partial exposition.
func (c *Collector) WriteFile(fs afero.Fs, path string) error {
	if err := c.writeFile(fs, path); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

func (c *Collector) writeFile(fs afero.Fs, path string) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(tmp, mf); err != nil {
			_ = tmp.Close()
			_ = fs.Remove(tmp.Name())
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmp.Name())
		return err
	}
	if err := fs.Chmod(tmp.Name(), 0o644); err != nil {
		_ = fs.Remove(tmp.Name())
		return err
	}
	return fs.Rename(tmp.Name(), path)
}

// register adds collector to reg, returning the already registered collector
// of the same type when one exists under that name.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
