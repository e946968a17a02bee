package worker

import (
	"newsbrief/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics tracks cron job execution alongside the embedded
// configuration metrics.
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: runs by status (started/success/failure)
//   - worker_cron_job_duration_seconds: run duration histogram
//   - worker_cron_job_items_delivered_total: items delivered across runs
//   - worker_cron_job_last_success_timestamp: last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	CronJobRunsTotal            *prometheus.CounterVec
	CronJobDurationSeconds      prometheus.Histogram
	CronJobItemsDeliveredTotal  prometheus.Counter
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and registers the worker metrics. Register
// at most once per process; promauto panics on duplicate names.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobItemsDeliveredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_items_delivered_total",
			Help: "Total number of items delivered across all cron job runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// RecordJobRun counts one job run with the given status
// ("started", "success", or "failure").
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes one run's duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordItemsDelivered adds the items delivered by one run.
func (m *WorkerMetrics) RecordItemsDelivered(count int) {
	m.CronJobItemsDeliveredTotal.Add(float64(count))
}

// RecordLastSuccess marks now as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
