package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "users_bus_message_duration_seconds",
			Help:    "Command and query handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"message", "outcome"},
	)
	notificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_notification_failures_total",
			Help: "User created notifications that failed and were left to the outbox relay",
		},
	)
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_view_cache_errors_total",
			Help: "Read model cache errors by operation",
		},
		[]string{"op"},
	)
)

func outcomeOf(failure *Error, err error) string {
	switch {
	case err != nil:
		return "error"
	case failure != nil:
		return string(failure.Kind)
	default:
		return "success"
	}
}
