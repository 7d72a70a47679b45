// Package metrics defines the prometheus collectors of the statistics
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "publicstats_build_info",
			Help: "Build information of the public statistics pipeline",
		},
		[]string{"version", "commit", "date"},
	)

	ComputationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publicstats_computation_total",
			Help: "Total number of yearly snapshot computations",
		},
		[]string{"status"},
	)

	ComputationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "publicstats_computation_duration_seconds",
			Help:    "Duration of yearly snapshot computations",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		},
		[]string{"year"},
	)

	WarehouseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publicstats_warehouse_queries_total",
			Help: "Total number of warehouse extraction queries",
		},
		[]string{"dataset", "status"},
	)

	WarehouseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "publicstats_warehouse_query_duration_seconds",
			Help:    "Duration of warehouse extraction queries",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~410s
		},
		[]string{"dataset"},
	)

	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publicstats_snapshot_writes_total",
			Help: "Total number of snapshot write transactions",
		},
		[]string{"status"},
	)
)

// Status labels a counter by outcome.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
