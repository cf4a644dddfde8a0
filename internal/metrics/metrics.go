// Package metrics holds the prometheus collectors shared by the remote clients
// and the tool layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RemoteCallDuration tracks Notion and LLM round trips in seconds.
	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskdesk_remote_call_duration_seconds",
			Help:    "Remote API call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"service", "operation", "status"},
	)

	// ToolCalls counts tool invocations by outcome.
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdesk_tool_calls_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "status"}, // status: success, error
	)

	// IdentityCacheLookups counts identity cache hits and misses.
	IdentityCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdesk_identity_cache_lookups_total",
			Help: "Identity resolution cache lookups",
		},
		[]string{"result"}, // hit, miss
	)
)

// ObserveRemoteCall records one remote call. statusCode 0 means the request
// never got a response.
func ObserveRemoteCall(service, operation string, statusCode int, started time.Time) {
	status := "transport_error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	RemoteCallDuration.WithLabelValues(service, operation, status).Observe(time.Since(started).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
