package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	routedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightdesk_router_requests_total",
		Help: "Total number of routed requests by branch and intent",
	}, []string{"branch", "intent"})

	capabilityCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightdesk_capability_calls_total",
		Help: "Total number of capability invocations by capability and result",
	}, []string{"capability", "result"})

	agentOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightdesk_agent_outcomes_total",
		Help: "Total number of agent loop outcomes by kind",
	}, []string{"kind"})

	agentSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightdesk_agent_steps",
		Help:    "Number of model steps taken per agent loop",
		Buckets: []float64{1, 2, 3, 5, 8, 12, 15},
	})

	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightdesk_upstream_requests_total",
		Help: "Total number of travel API requests by operation and status class",
	}, []string{"operation", "status"})
)

// RecordRoute records one Router decision.
func RecordRoute(branch, intent string) {
	routedTotal.WithLabelValues(normalizeBranchLabel(branch), normalizeLabel(intent)).Inc()
}

// RecordCapabilityCall records one adapter or validation result.
func RecordCapabilityCall(capability, result string) {
	capabilityCallsTotal.WithLabelValues(normalizeLabel(capability), normalizeResultLabel(result)).Inc()
}

// RecordAgentOutcome records the terminal state of one agent loop.
func RecordAgentOutcome(kind string, steps int) {
	agentOutcomesTotal.WithLabelValues(normalizeLabel(kind)).Inc()
	agentSteps.Observe(float64(steps))
}

func RecordUpstreamRequest(operation string, statusCode int) {
	upstreamRequestsTotal.WithLabelValues(normalizeLabel(operation), statusClass(statusCode)).Inc()
}

func normalizeBranchLabel(branch string) string {
	switch strings.ToLower(strings.TrimSpace(branch)) {
	case "out_of_scope", "small_talk", "dispatch", "fallback":
		return strings.ToLower(strings.TrimSpace(branch))
	default:
		return "unknown"
	}
}

func normalizeResultLabel(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "success", "upstream_error", "transport_error", "validation_error":
		return strings.ToLower(strings.TrimSpace(result))
	default:
		return "unknown"
	}
}

func normalizeLabel(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "unknown"
	}
	return v
}

func statusClass(code int) string {
	switch {
	case code <= 0:
		return "error"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
