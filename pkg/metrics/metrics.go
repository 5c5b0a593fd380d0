package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorconnect_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// MentorshipTransitions counts mentorship lifecycle transitions by target status and outcome.
	MentorshipTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorconnect_mentorship_transitions_total",
			Help: "Total number of mentorship status transition attempts",
		},
		[]string{"to_status", "result"},
	)

	// EventRegistrations counts event registration attempts by assigned status (registered|waitlisted) or failure.
	EventRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorconnect_event_registrations_total",
			Help: "Total number of event registration attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorconnect_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
