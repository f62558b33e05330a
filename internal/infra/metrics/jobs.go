package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		generationAttemptsTotal,
		generationJobsFinishedTotal,
		generationPartialDaysDropped,
		generationGateConflicts,
		generationJobsAbandoned,
	)
}

var (
	generationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_attempts_total",
			Help: "Provider attempts made by generation jobs, labeled by outcome.",
		},
		[]string{"outcome"}, // 'success', 'parse_failed', 'schema_failed', 'provider_failed'
	)

	generationJobsFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_jobs_finished_total",
			Help: "Generation jobs that reached a terminal status.",
		},
		[]string{"status"},
	)

	generationPartialDaysDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "generation_partial_days_dropped_total",
		Help: "Invalid days dropped from otherwise successful generations.",
	})

	generationGateConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "generation_gate_conflicts_total",
		Help: "Job submissions rejected because a job was already active.",
	})

	generationJobsAbandoned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "generation_jobs_abandoned_total",
		Help: "RUNNING jobs failed by the stuck-job sweeper.",
	})
)

func IncGenerationAttempt(outcome string) {
	generationAttemptsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncGenerationJobFinished(status string) {
	generationJobsFinishedTotal.WithLabelValues(norm(status)).Inc()
}

func AddPartialDaysDropped(n int) {
	if n > 0 {
		generationPartialDaysDropped.Add(float64(n))
	}
}

func IncGateConflict() { generationGateConflicts.Inc() }

func AddJobsAbandoned(n int) {
	if n > 0 {
		generationJobsAbandoned.Add(float64(n))
	}
}
