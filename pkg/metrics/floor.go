package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the floor decision HTTP handler
	FloorDecisionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "floor_decision_latency_seconds",
		Help:    "Latency of the floor decision handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of floor decisions served over HTTP
	FloorDecisionRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floor_decision_requests_total",
		Help: "Total number of floor decision requests",
	})

	// Total number of outcome reports accepted over HTTP
	FloorOutcomeRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floor_outcome_requests_total",
		Help: "Total number of floor outcome requests",
	})
)

func Init() {
	prometheus.MustRegister(
		FloorDecisionLatency,
		FloorDecisionRequests,
		FloorOutcomeRequests,
	)
}
