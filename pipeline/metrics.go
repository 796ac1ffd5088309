package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	passDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "qpiler",
		Subsystem: "pipeline",
		Name:      "pass_duration_seconds",
		Help:      "Wall time spent in each pass.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"stage", "pass"})

	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qpiler",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Completed pipeline runs by outcome.",
	}, []string{"status"})

	optIterations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "qpiler",
		Subsystem: "pipeline",
		Name:      "optimization_iterations",
		Help:      "Iterations the optimization loop took to reach a fixed point.",
		Buckets:   prometheus.LinearBuckets(1, 1, 10),
	})
)

func init() {
	prometheus.MustRegister(passDuration, runsTotal, optIterations)
}
