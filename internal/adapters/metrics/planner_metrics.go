package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
)

// PlannerMetricsCollector handles craft planner pass metrics
type PlannerMetricsCollector struct {
	passesTotal      *prometheus.CounterVec
	passDuration     *prometheus.HistogramVec
	chainsConsidered prometheus.Counter
	chainsRetained   prometheus.Gauge
	rejectionsTotal  *prometheus.CounterVec
	craftableEntries prometheus.Gauge
	searchLayers     prometheus.Gauge
}

// NewPlannerMetricsCollector creates a new planner metrics collector
func NewPlannerMetricsCollector() *PlannerMetricsCollector {
	return &PlannerMetricsCollector{
		passesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "passes_total",
				Help:      "Total number of planner passes by mode",
			},
			[]string{"mode"},
		),
		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pass_duration_seconds",
				Help:      "Planner pass duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"mode"},
		),
		chainsConsidered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "chains_considered_total",
				Help:      "Total number of candidate extensions considered",
			},
		),
		chainsRetained: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "chains_retained",
				Help:      "Chains retained by the last full pass",
			},
		),
		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rejections_total",
				Help:      "Candidate extensions dropped, by reason",
			},
			[]string{"reason"},
		),
		craftableEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "craftable_entries",
				Help:      "Craftable entries emitted by the last pass",
			},
		),
		searchLayers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "search_layers",
				Help:      "Layers expanded by the last full pass",
			},
		),
	}
}

// Register registers all planner metrics with the Prometheus registry
func (c *PlannerMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}

	metrics := []prometheus.Collector{
		c.passesTotal,
		c.passDuration,
		c.chainsConsidered,
		c.chainsRetained,
		c.rejectionsTotal,
		c.craftableEntries,
		c.searchLayers,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordPass records one planner pass
func (c *PlannerMetricsCollector) RecordPass(stats *services.PassStats) {
	mode := string(stats.Mode)
	c.passesTotal.WithLabelValues(mode).Inc()
	c.passDuration.WithLabelValues(mode).Observe(stats.Duration.Seconds())
	c.craftableEntries.Set(float64(stats.Entries))

	if stats.Mode != services.PassModeFull {
		return
	}

	c.chainsConsidered.Add(float64(stats.Considered))
	c.chainsRetained.Set(float64(stats.Retained))
	c.searchLayers.Set(float64(stats.Layers))
	for reason, n := range stats.Rejections {
		c.rejectionsTotal.WithLabelValues(string(reason)).Add(float64(n))
	}
}
