// Package metrics exposes simulation state as Prometheus metrics on a
// dedicated registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/specialization"
)

const (
	// Namespace for all metrics
	namespace = "starweave"
	// Subsystem for simulation metrics
	subsystem = "sim"
)

// Collector records simulation metrics.
type Collector struct {
	registry *prometheus.Registry

	ticks         prometheus.Counter
	tickDuration  prometheus.Histogram
	stars         prometheus.Gauge
	reachable     prometheus.Gauge
	connections   prometheus.Gauge
	constellation prometheus.Gauge
	playerStock   *prometheus.GaugeVec
	units         *prometheus.GaugeVec
	events        *prometheus.CounterVec
	requestErrors *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	return &Collector{
		registry: prometheus.NewRegistry(),

		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total number of simulation ticks",
		}),

		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock time spent in one simulation tick",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		stars: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stars",
			Help:      "Number of stars in the network",
		}),

		reachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reachable_stars",
			Help:      "Number of stars with a route to a sink",
		}),

		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connections",
			Help:      "Number of directed connections",
		}),

		constellation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "constellations",
			Help:      "Number of constellations formed",
		}),

		playerStock: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "player_stock",
				Help:      "Player resource stock by kind",
			},
			[]string{"resource"},
		),

		units: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "units",
				Help:      "Units produced by kind",
			},
			[]string{"unit"},
		),

		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_total",
				Help:      "Simulation events by category",
			},
			[]string{"category"},
		),

		requestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_errors_total",
				Help:      "Rejected player requests by reason",
			},
			[]string{"reason"},
		),
	}
}

// Register registers all metrics with the collector's registry.
func (c *Collector) Register() error {
	metrics := []prometheus.Collector{
		c.ticks,
		c.tickDuration,
		c.stars,
		c.reachable,
		c.connections,
		c.constellation,
		c.playerStock,
		c.units,
		c.events,
		c.requestErrors,
	}

	for _, metric := range metrics {
		if err := c.registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordTick records one tick and how long it took.
func (c *Collector) RecordTick(d time.Duration) {
	c.ticks.Inc()
	c.tickDuration.Observe(d.Seconds())
}

// RecordEvents counts events by category and rejected requests by reason.
func (c *Collector) RecordEvents(events []engine.Event) {
	for _, e := range events {
		c.events.WithLabelValues(e.Category).Inc()
		if e.Category != engine.CategoryRequest {
			continue
		}
		reason, _ := e.Meta["error"].(string)
		if reason == "" {
			reason = "other"
		}
		c.requestErrors.WithLabelValues(reason).Inc()
	}
}

// RecordState sets the gauges from a snapshot of the simulation.
func (c *Collector) RecordState(stats engine.Stats, player *resource.Ledger, units map[specialization.UnitKind]int) {
	c.stars.Set(float64(stats.Stars))
	c.reachable.Set(float64(stats.Reachable))
	c.connections.Set(float64(stats.Connections))
	c.constellation.Set(float64(stats.Constellations))

	for _, k := range resource.All() {
		c.playerStock.WithLabelValues(k.String()).Set(player.Amount(k))
	}
	for _, u := range specialization.UnitKinds() {
		c.units.WithLabelValues(u.String()).Set(float64(units[u]))
	}
}

// Observe records a snapshot of sim.
func (c *Collector) Observe(sim *engine.Simulation) {
	c.RecordState(sim.Stats(), sim.Player(), sim.Units())
}
