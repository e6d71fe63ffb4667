package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Crew assignment metrics.
var (
	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crew_candidates_scored_total",
			Help: "Total number of crew candidates scored",
		},
	)

	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crew_scoring_duration_seconds",
			Help:    "Time spent scoring a candidate pool",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	AssignmentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crew_assignments_created_total",
			Help: "Crew assignments persisted, by method",
		},
		[]string{"method"},
	)

	AssignmentsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crew_assignments_confirmed_total",
			Help: "Crew assignments that reached the confirmed state",
		},
	)

	InsufficientCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crew_insufficient_candidates_total",
			Help: "Auto-assign requests rejected for lack of available crew",
		},
	)

	OverloadedCrew = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crew_overloaded_members",
			Help: "Overloaded crew members in the most recently balanced week",
		},
	)
)
