package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message outcomes reported by the messages_total counter.
const (
	outcomeProcessed    = "processed"
	outcomePoison       = "poison"
	outcomeUnknownType  = "unknown_type"
	outcomeBackendError = "backend_error"
	outcomeError        = "error"
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "widget_consumer",
		Name:      "messages_total",
		Help:      "Queue messages handled by the poller, labelled by outcome.",
	}, []string{"outcome"})

	pollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "widget_consumer",
		Name:      "polls_total",
		Help:      "Queue poll attempts, including those that found no message.",
	})
)
