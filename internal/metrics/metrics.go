package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AttemptsStartedTotal tracks attempts that left the setup state
	AttemptsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_attempts_started_total",
			Help: "Total number of quiz attempts started",
		},
	)

	// AttemptsRejectedTotal tracks setup rejections by reason
	AttemptsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_attempts_rejected_total",
			Help: "Total number of quiz attempts rejected at setup by reason",
		},
		[]string{"reason"},
	)

	// SubmissionsTotal tracks completion writes by outcome (persisted or failed)
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Total number of quiz submission writes by outcome (persisted or failed)",
		},
		[]string{"outcome"},
	)

	// EventsTotal tracks dispatched events by type
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_events_total",
			Help: "Total number of events dispatched by type",
		},
		[]string{"type"},
	)
)

const (
	OutcomePersisted = "persisted"
	OutcomeFailed    = "failed"
)

// RecordAttemptStarted records an attempt entering the in-progress state
func RecordAttemptStarted() {
	AttemptsStartedTotal.Inc()
}

// RecordAttemptRejected records a setup rejection with the given reason
func RecordAttemptRejected(reason string) {
	AttemptsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordSubmission records a submission write with the given outcome
func RecordSubmission(outcome string) {
	SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordEvent records an event with the given type
func RecordEvent(eventType string) {
	EventsTotal.WithLabelValues(eventType).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
