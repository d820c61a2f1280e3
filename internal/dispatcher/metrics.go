package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// commandOutcomesTotal counts finished runs by command and terminal state.
	commandOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doccomments_command_outcomes_total",
		Help: "Finished documentation command runs by command and terminal state",
	}, []string{"command", "state"})

	// agentRunDuration tracks how long agent subprocesses run.
	agentRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "doccomments_agent_run_duration_seconds",
		Help:    "Agent subprocess duration in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"command"})

	// chatFallbacksTotal counts clipboard fallbacks after the chat could not be prefilled.
	chatFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doccomments_chat_fallbacks_total",
		Help: "Chat prompts delivered through the clipboard fallback",
	})
)

func recordOutcome(outcome Outcome) {
	commandOutcomesTotal.WithLabelValues(outcome.CommandID, outcome.State.String()).Inc()
}
