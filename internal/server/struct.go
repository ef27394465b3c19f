package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haxtheweb/alfred-go/internal/engine"
	"github.com/haxtheweb/alfred-go/internal/history"
	"github.com/haxtheweb/alfred-go/internal/ingest"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	// Ingestion renders and embeds a whole site, so the default is generous.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives all Prometheus metric registrations. If nil a
	// fresh registry is created, keeping unit tests hermetic.
	MetricsRegistry *prometheus.Registry
}

// ingester is the interface handleIngest calls to ingest a course site.
// *ingest.Pipeline satisfies it; tests inject a fake.
type ingester interface {
	IngestURL(ctx context.Context, siteURL string) (*ingest.Result, error)
}

// contextRetriever is the interface handleAsk calls to build course context.
// *retrieval.Pipeline satisfies it; tests inject a fake.
type contextRetriever interface {
	Context(ctx context.Context, course, question string) (string, error)
}

// answerRouter is the interface handleAsk calls to produce an answer.
// *engine.Router satisfies it; tests inject a fake.
type answerRouter interface {
	Answer(ctx context.Context, question, contextText, engineName string) (engine.Envelope, error)
	Resolve(engineName string) string
}

// collectionLister is the interface handleCourses calls to enumerate courses.
// The vector store satisfies it; tests inject a fake.
type collectionLister interface {
	List(ctx context.Context) ([]string, error)
}

// Server is the HTTP server that exposes the ingestion and ask pipelines.
type Server struct {
	// ingester runs course site ingestions.
	ingester ingester
	// retriever builds course context for questions.
	retriever contextRetriever
	// router dispatches questions to answer engines.
	router answerRouter
	// lister enumerates ingested course collections.
	lister collectionLister
	// history persists course conversations; nil disables history.
	history history.ConversationStore
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds all Prometheus metrics owned by this server instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// ingestRequest is the JSON body for POST /api/ingest.
type ingestRequest struct {
	// URL is the published course site to ingest.
	URL string `json:"url"`
}

// ingestResponse is the JSON response for POST /api/ingest.
type ingestResponse struct {
	// Message is a human-readable completion message.
	Message string `json:"message"`
	// CollectionName is the collection the site was ingested into.
	CollectionName string `json:"collectionName"`
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// Question is the student's question.
	Question string `json:"question"`
	// Course is the course collection to retrieve context from.
	Course string `json:"course"`
	// Engine names the answer engine; empty or unknown falls back to the default.
	Engine string `json:"engine,omitempty"`
}

// courseEntry is one element of the GET /api/courses response, shaped for
// direct use in a frontend select widget.
type courseEntry struct {
	// Value is the collection slug.
	Value string `json:"value"`
	// Label is the display name.
	Label string `json:"label"`
}

// errorResponse is the JSON body for error results.
type errorResponse struct {
	// Error is the human-readable failure reason.
	Error string `json:"error"`
}
