// Package metrics exposes Prometheus instrumentation for the agent runtime.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration tracks request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nexus_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// RuntimeCalls counts chat-completion calls per runtime adapter
	RuntimeCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_runtime_calls_total",
			Help: "Total number of runtime chat-completion calls",
		},
		[]string{"runtime", "streaming", "status"},
	)

	// RuntimeCallDuration tracks runtime call latency
	RuntimeCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nexus_runtime_call_duration_seconds",
			Help:    "Runtime chat-completion call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"runtime"},
	)

	// ContextBlocks tracks how many blocks each context assembly produced
	ContextBlocks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nexus_context_blocks",
			Help:    "Number of blocks per assembled knowledge context",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 12, 16},
		},
	)

	// ContextTokenEstimate tracks the token estimate of assembled contexts
	ContextTokenEstimate = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nexus_context_token_estimate",
			Help:    "Token estimate per assembled knowledge context",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000},
		},
	)

	// DiscoveryGuardRefusals counts turns vetoed by the discovery guard
	DiscoveryGuardRefusals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nexus_discovery_guard_refusals_total",
			Help: "Total number of turns refused by the discovery-phase guard",
		},
	)

	// IntentDetected counts classified intents per turn
	IntentDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_intent_detected_total",
			Help: "Total number of detected conversation intents",
		},
		[]string{"intent"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher for SSE support
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware creates an HTTP middleware that records metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// normalizePath normalizes URL paths to avoid high cardinality
func normalizePath(path string) string {
	switch path {
	case "/healthz", "/metrics":
		return path
	default:
		if strings.HasPrefix(path, "/v1/agent/") || path == "/v1/runtime" {
			return path
		}
		return "other"
	}
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRuntimeCall records one runtime chat-completion call
func RecordRuntimeCall(runtime string, streaming bool, status string, durationSeconds float64) {
	RuntimeCalls.WithLabelValues(runtime, strconv.FormatBool(streaming), status).Inc()
	RuntimeCallDuration.WithLabelValues(runtime).Observe(durationSeconds)
}

// RecordContextAssembly records the shape of one assembled context
func RecordContextAssembly(blockCount, tokenEstimate int) {
	ContextBlocks.Observe(float64(blockCount))
	ContextTokenEstimate.Observe(float64(tokenEstimate))
}

// RecordIntent records one classified intent
func RecordIntent(intent string) {
	IntentDetected.WithLabelValues(intent).Inc()
}

// RecordGuardRefusal records one discovery-guard veto
func RecordGuardRefusal() {
	DiscoveryGuardRefusals.Inc()
}
