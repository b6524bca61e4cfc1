package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ProfilesObserved    prometheus.Counter
	ActionsTotal        *prometheus.CounterVec // outcome: connected, skipped, failed
	PagesVisited        prometheus.Counter
	RunsTotal           *prometheus.CounterVec
	StepDuration        *prometheus.HistogramVec

	initOnce sync.Once
)

// Init registers the collectors with the default registry. It is safe to call
// more than once.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ProfilesObserved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "connector_profiles_observed_total",
			Help: "Total number of candidate profiles enumerated on result pages.",
		},
	)

	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_actions_total",
			Help: "Candidate evaluations by outcome.",
		},
		[]string{"outcome", "reason"},
	)

	PagesVisited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "connector_pages_visited_total",
			Help: "Total number of result pages processed.",
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_runs_total",
			Help: "Finished runs by termination reason.",
		},
		[]string{"termination"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "connector_step_duration_seconds",
			Help:    "Duration of driver steps.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"step"},
	)
}
