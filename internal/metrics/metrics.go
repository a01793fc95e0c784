// Package metrics exposes the companion's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WakeDetections counts wake-word triggers.
	WakeDetections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aegis_wake_detections_total",
		Help: "Number of wake-word detections.",
	})

	// CommandsHandled counts routed commands by route.
	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegis_commands_handled_total",
		Help: "Number of commands handled, by route.",
	}, []string{"route"})

	// ChatRequests counts brain turns by entry channel.
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegis_chat_requests_total",
		Help: "Number of chat requests, by channel.",
	}, []string{"channel"})

	// ProviderErrors counts LLM provider failures.
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aegis_provider_errors_total",
		Help: "Number of LLM provider failures, by provider.",
	}, []string{"provider"})

	// CommandDuration tracks end-to-end command handling time.
	CommandDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aegis_command_duration_seconds",
		Help:    "End-to-end command handling duration.",
		Buckets: prometheus.DefBuckets,
	})
)
