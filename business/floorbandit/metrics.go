package floorbandit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FloorDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floor_decisions_total",
			Help: "Count of floor decisions by adapter, ad format, and mode.",
		},
		[]string{"adapter", "ad_format", "mode"},
	)

	FloorOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floor_outcomes_total",
			Help: "Count of reported auction outcomes by adapter, ad format, and result.",
		},
		[]string{"adapter", "ad_format", "result"},
	)

	FloorPersistFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floor_persist_failures_total",
			Help: "Count of swallowed persistence failures by operation.",
		},
		[]string{"op"},
	)

	FloorExperimentResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "floor_experiment_resets_total",
			Help: "Count of experiment resets.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		FloorDecisionsTotal,
		FloorOutcomesTotal,
		FloorPersistFailuresTotal,
		FloorExperimentResetsTotal,
	)
}
