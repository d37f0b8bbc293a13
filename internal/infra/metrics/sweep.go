package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(sweepJobsReclaimed, sweepErrorsTotal) }

var sweepJobsReclaimed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ocr_sweep_jobs_reclaimed_total",
		Help: "Total number of expired jobs fully reclaimed by the retention sweeper.",
	},
)

var sweepErrorsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ocr_sweep_errors_total",
		Help: "Retention sweep errors, counting failed passes and per-job cleanup failures.",
	},
)

func AddJobsReclaimed(n int) {
	if n > 0 {
		sweepJobsReclaimed.Add(float64(n))
	}
}

func IncSweepError() { sweepErrorsTotal.Inc() }

func AddSweepErrors(n int) {
	if n > 0 {
		sweepErrorsTotal.Add(float64(n))
	}
}
