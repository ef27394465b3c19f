// metrics.go registers all Prometheus metrics for the HTTP server and
// exposes helpers used by handlers and middleware.

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values shared across registrations.
const (
	// labelHandler is the "handler" label value used to partition metrics by
	// the logical endpoint name rather than the raw URL path.
	labelHandler = "handler"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// ingestTotal counts completed /api/ingest requests, partitioned by
	// outcome: "ok", "invalid_url", or "error".
	ingestTotal *prometheus.CounterVec

	// ingestChunks records the number of chunks stored per successful ingestion.
	ingestChunks prometheus.Histogram

	// ingestDurationSeconds records the wall-clock duration of each ingestion.
	ingestDurationSeconds prometheus.Histogram

	// askTotal counts completed /api/ask requests, partitioned by engine and
	// outcome: "ok", "no_context", or "error".
	askTotal *prometheus.CounterVec

	// askDurationSeconds records the latency of /api/ask requests by engine.
	askDurationSeconds *prometheus.HistogramVec

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler name, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default,
// which keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		ingestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alfred",
			Subsystem: "ingest",
			Name:      "requests_total",
			Help:      "Total number of /api/ingest requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		ingestChunks: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alfred",
			Subsystem: "ingest",
			Name:      "chunks",
			Help:      "Number of chunks stored per successful ingestion.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500},
		}),

		ingestDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alfred",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of course ingestions.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		askTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alfred",
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Total number of /api/ask requests completed, partitioned by engine and outcome.",
		}, []string{"engine", "outcome"}),

		askDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "alfred",
			Subsystem: "ask",
			Name:      "duration_seconds",
			Help:      "Latency of /api/ask requests from receipt to answer.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"engine"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alfred",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "alfred",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}
