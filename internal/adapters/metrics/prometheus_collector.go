package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
)

const (
	// Namespace for all metrics
	namespace = "cookbook"
	// Subsystem for planner metrics
	subsystem = "planner"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalPlannerCollector is set by SetGlobalPlannerCollector when metrics are enabled
	globalPlannerCollector PlannerMetricsRecorder
)

// PlannerMetricsRecorder records the outcome of planner passes
type PlannerMetricsRecorder interface {
	RecordPass(stats *services.PassStats)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// ResetRegistry drops the registry and the global collector
func ResetRegistry() {
	Registry = nil
	globalPlannerCollector = nil
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalPlannerCollector sets the global planner metrics collector
func SetGlobalPlannerCollector(collector PlannerMetricsRecorder) {
	globalPlannerCollector = collector
}

// RecordPlannerPass records a planner pass globally
func RecordPlannerPass(stats *services.PassStats) {
	if globalPlannerCollector != nil && stats != nil {
		globalPlannerCollector.RecordPass(stats)
	}
}
