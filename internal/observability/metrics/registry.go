// Package metrics provides centralized Prometheus metrics for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch metrics track per-source fetch behavior and fault isolation
var (
	// SourceFetchTotal counts fetch calls per source and terminal status.
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_source_fetch_total",
			Help: "Total number of source fetch calls by source and status",
		},
		[]string{"source", "status"},
	)

	// SourceFetchErrors counts fetch failures per source and error kind.
	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_source_fetch_errors_total",
			Help: "Total number of source fetch failures by source and error kind",
		},
		[]string{"source", "error_kind"},
	)

	// SourceFetchDuration measures per-source fetch duration in seconds.
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsbrief_source_fetch_duration_seconds",
			Help:    "Source fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// ItemsFetchedTotal counts items produced by each source.
	ItemsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_items_fetched_total",
			Help: "Total number of items fetched by source",
		},
		[]string{"source"},
	)

	// CircuitTransitionsTotal counts circuit breaker state transitions.
	CircuitTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_circuit_transitions_total",
			Help: "Total number of circuit breaker transitions by source and new state",
		},
		[]string{"source", "state"},
	)
)

// Pipeline metrics track stage-level behavior of each run
var (
	// ItemsDroppedTotal counts items dropped per pipeline stage and reason.
	ItemsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_items_dropped_total",
			Help: "Total number of items dropped by stage and reason",
		},
		[]string{"stage", "reason"},
	)

	// ItemsAdmittedTotal counts items that passed admission.
	ItemsAdmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsbrief_items_admitted_total",
			Help: "Total number of items admitted to the final brief",
		},
	)

	// EnrichmentTotal counts enrichment calls by status.
	EnrichmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_enrichment_total",
			Help: "Total number of enrichment calls by status",
		},
		[]string{"status"},
	)

	// EnrichmentDuration measures per-item enrichment duration in seconds.
	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsbrief_enrichment_duration_seconds",
			Help:    "Per-item enrichment duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RunDuration measures full pipeline run duration in seconds.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsbrief_run_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"status"},
	)

	// HistoryRecordsPruned counts expired dedup history records removed.
	HistoryRecordsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsbrief_history_records_pruned_total",
			Help: "Total number of expired history records pruned",
		},
	)

	// DeliveryTotal counts brief deliveries by channel and status.
	DeliveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_delivery_total",
			Help: "Total number of brief deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)
)
