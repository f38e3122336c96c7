package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StudentSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spm_student_syncs_total",
			Help: "Total number of single student syncs by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	StudentSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spm_student_sync_duration_seconds",
			Help:    "Duration of a single student sync in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
	)

	SyncStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spm_sync_stage_failures_total",
			Help: "Total number of swallowed failures per sync stage",
		},
		[]string{"stage"}, // "contests", "submissions"
	)

	RemoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spm_remote_requests_total",
			Help: "Total number of codeforces api fetches by endpoint and result",
		},
		[]string{"endpoint", "result"}, // result: "success", "retry", "failure", "rejected"
	)

	Reminders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spm_reminders_total",
			Help: "Total number of inactivity reminders by result",
		},
		[]string{"result"},
	)

	FleetLastRunSuccessful = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spm_fleet_last_run_successful",
			Help: "Number of students synced successfully in the last fleet run",
		},
	)

	FleetLastRunFailed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spm_fleet_last_run_failed",
			Help: "Number of students that failed to sync in the last fleet run",
		},
	)

	BackgroundQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spm_background_sync_queue_depth",
			Help: "Number of background sync tasks waiting in the queue",
		},
	)
)
