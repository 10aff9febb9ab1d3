package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fragmentforge_sessions_started_total",
		Help: "Number of startGame transitions applied.",
	})

	metricSessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fragmentforge_sessions_completed_total",
		Help: "Number of sessions that answered every door.",
	})

	metricAnswers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fragmentforge_answers_total",
		Help: "Door answers by outcome.",
	}, []string{"outcome"})

	metricPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fragmentforge_session_persist_failures_total",
		Help: "Best-effort session saves that failed.",
	})
)

const (
	outcomeCorrect  = "correct"
	outcomeWrong    = "wrong"
	outcomeRejected = "rejected"
)
