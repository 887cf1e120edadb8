package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admissions_applications_submitted_total",
			Help: "Total number of submitted applications",
		},
		[]string{"kind", "outcome"},
	)

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admissions_status_transitions_total",
			Help: "Total number of application status transitions",
		},
		[]string{"to", "outcome"},
	)

	MatchScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admissions_match_score",
			Help:    "Distribution of computed job match scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"kind"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
