package metrics

import (
	"time"
)

// RecordSourceFetch records the terminal outcome of one source fetch call.
// Status should be one of "ok", "partial", or "failed".
func RecordSourceFetch(source, status string, duration time.Duration, itemCount int) {
	SourceFetchTotal.WithLabelValues(source, status).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if itemCount > 0 {
		ItemsFetchedTotal.WithLabelValues(source).Add(float64(itemCount))
	}
}

// RecordSourceFetchError records a fetch failure with its classified kind.
func RecordSourceFetchError(source, errorKind string) {
	SourceFetchErrors.WithLabelValues(source, errorKind).Inc()
}

// RecordCircuitTransition records a circuit breaker state change.
// State should be the new state name ("closed", "open", "half_open").
func RecordCircuitTransition(source, state string) {
	CircuitTransitionsTotal.WithLabelValues(source, state).Inc()
}

// RecordItemsDropped records items removed by a pipeline stage.
// Stage is the stage name ("filter", "dedup_batch", "dedup_history",
// "admission", "cap") and reason the specific drop cause.
func RecordItemsDropped(stage, reason string, count int) {
	if count <= 0 {
		return
	}
	ItemsDroppedTotal.WithLabelValues(stage, reason).Add(float64(count))
}

// RecordItemsAdmitted records items that passed dual-threshold admission.
func RecordItemsAdmitted(count int) {
	if count <= 0 {
		return
	}
	ItemsAdmittedTotal.Add(float64(count))
}

// RecordEnrichment records the result of one enrichment call.
func RecordEnrichment(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	EnrichmentTotal.WithLabelValues(status).Inc()
	EnrichmentDuration.Observe(duration.Seconds())
}

// RecordRun records a completed pipeline run.
// Status should be "ok" or "failed".
func RecordRun(status string, duration time.Duration) {
	RunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordHistoryPruned records the number of expired history records removed.
func RecordHistoryPruned(count int64) {
	if count <= 0 {
		return
	}
	HistoryRecordsPruned.Add(float64(count))
}

// RecordDelivery records a brief delivery attempt.
func RecordDelivery(channel string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	DeliveryTotal.WithLabelValues(channel, status).Inc()
}
