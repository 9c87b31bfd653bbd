package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchAttemptsTotal counts sun data provider fetch attempts.
	FetchAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heliostat_fetch_attempts_total",
		Help: "Number of sun window fetch attempts against the data provider.",
	})

	// FetchFailuresTotal counts failed fetch attempts by reason.
	FetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heliostat_fetch_failures_total",
		Help: "Number of failed sun window fetch attempts.",
	}, []string{"reason"})

	// FallbackWindowsTotal counts cycles that ran on the default window.
	FallbackWindowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heliostat_fallback_windows_total",
		Help: "Number of day cycles that used the fixed fallback window.",
	})

	// OrderingViolationsTotal counts misordered windows.
	OrderingViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heliostat_window_ordering_violations_total",
		Help: "Number of windows whose sunrise/sunset/next-boundary ordering was invalid.",
	})

	// TransitionsTotal counts state machine transitions by state.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heliostat_transitions_total",
		Help: "Number of day-cycle state transitions.",
	}, []string{"state"})

	// ServiceCommandsTotal counts issued service commands by verb and outcome.
	ServiceCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heliostat_service_commands_total",
		Help: "Number of service control commands issued.",
	}, []string{"verb", "outcome"})

	// CyclesTotal counts completed day cycles.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heliostat_cycles_total",
		Help: "Number of completed day cycles.",
	})

	// NextWakeTimestamp exposes the unix time of the next scheduled wake-up.
	NextWakeTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heliostat_next_wake_timestamp_seconds",
		Help: "Unix timestamp of the next boundary instant the scheduler sleeps toward.",
	})

	// ServiceIntent exposes the last requested service state (1 running, 0 stopped).
	ServiceIntent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heliostat_service_intent",
		Help: "Last requested managed service state: 1 for running, 0 for stopped.",
	})

	// APIActiveConnections tracks in-flight HTTP requests on the status server.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heliostat_api_active_connections",
		Help: "Number of in-flight HTTP requests.",
	})

	// APIRequestsTotal counts HTTP requests by method, endpoint, and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heliostat_api_requests_total",
		Help: "Number of HTTP requests served.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes HTTP request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "heliostat_api_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
