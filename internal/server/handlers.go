package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/haxtheweb/alfred-go/internal/history"
	"github.com/haxtheweb/alfred-go/internal/ingest"
	"github.com/haxtheweb/alfred-go/internal/logging"
)

// historyLimit is the number of recent messages returned by GET /api/history.
const historyLimit = 50

// handleIngest handles POST /api/ingest. It validates the site URL, runs the
// full ingestion pipeline, and reports the collection the site landed in.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	// Reject URLs with no derivable collection name before any pipeline work.
	if _, err := ingest.CollectionSlug(req.URL); err != nil {
		log.Warn("ingest: rejected site URL", slog.String("url", req.URL), slog.Any("error", err))
		s.metrics.ingestTotal.WithLabelValues("invalid_url").Inc()
		writeError(w, http.StatusUnprocessableEntity, "could not derive a collection name from the site URL")
		return
	}

	start := time.Now()
	result, err := s.ingester.IngestURL(r.Context(), req.URL)
	if err != nil {
		log.Error("ingest: pipeline failed", slog.String("url", req.URL), slog.Any("error", err))
		s.metrics.ingestTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	s.metrics.ingestTotal.WithLabelValues("ok").Inc()
	s.metrics.ingestChunks.Observe(float64(result.Chunks))
	s.metrics.ingestDurationSeconds.Observe(time.Since(start).Seconds())

	log.Info("ingest: completed",
		slog.String("collection", result.Collection),
		slog.Int("chunks", result.Chunks),
	)

	writeJSON(w, http.StatusOK, ingestResponse{
		Message:        "chunks embedded and stored successfully",
		CollectionName: result.Collection,
	})
}

// handleAsk handles POST /api/ask. Retrieval failures degrade to a
// "no results available" error rather than exposing store internals; engine
// failures degrade to "no answer available".
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.Course == "" {
		writeError(w, http.StatusBadRequest, "course is required")
		return
	}

	engineName := s.router.Resolve(req.Engine)
	start := time.Now()

	contextText, err := s.retriever.Context(r.Context(), req.Course, req.Question)
	if err != nil {
		log.Warn("ask: retrieval failed",
			slog.String("course", req.Course),
			slog.Any("error", err),
		)
		s.metrics.askTotal.WithLabelValues(engineName, "no_context").Inc()
		writeError(w, http.StatusBadGateway, "no results available")
		return
	}

	envelope, err := s.router.Answer(r.Context(), req.Question, contextText, req.Engine)
	if err != nil {
		log.Error("ask: engine failed",
			slog.String("engine", engineName),
			slog.Any("error", err),
		)
		s.metrics.askTotal.WithLabelValues(engineName, "error").Inc()
		writeError(w, http.StatusBadGateway, "no answer available")
		return
	}

	s.metrics.askTotal.WithLabelValues(engineName, "ok").Inc()
	s.metrics.askDurationSeconds.WithLabelValues(engineName).Observe(time.Since(start).Seconds())

	// History is best-effort: a write failure never fails the request.
	if s.history != nil {
		if err := s.history.Append(r.Context(), req.Course, history.RoleUser, "", req.Question); err != nil {
			log.Warn("ask: history append failed", slog.Any("error", err))
		} else if err := s.history.Append(r.Context(), req.Course, history.RoleAssistant, engineName, envelope.Answers.Text); err != nil {
			log.Warn("ask: history append failed", slog.Any("error", err))
		}
	}

	writeJSON(w, http.StatusOK, envelope)
}

// handleCourses handles GET /api/courses, returning all ingested courses in
// the value/label shape the frontend select widget consumes.
func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	names, err := s.lister.List(r.Context())
	if err != nil {
		log.Warn("courses: list failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "no results available")
		return
	}

	entries := make([]courseEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, courseEntry{Value: name, Label: name})
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleHistory handles GET /api/history?course=<slug>, returning the most
// recent conversation turns for a course, oldest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	course := r.URL.Query().Get("course")
	if course == "" {
		writeError(w, http.StatusBadRequest, "course is required")
		return
	}

	if s.history == nil {
		writeJSON(w, http.StatusOK, []history.Message{})
		return
	}

	limit := historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	msgs, err := s.history.Recent(r.Context(), course, limit)
	if err != nil {
		log.Warn("history: read failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "no results available")
		return
	}
	if msgs == nil {
		msgs = []history.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// handleHistoryClear handles POST /api/history/clear with body {"course": ...}.
func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req struct {
		Course string `json:"course"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Course == "" {
		writeError(w, http.StatusBadRequest, "course is required")
		return
	}

	if s.history != nil {
		if err := s.history.Clear(r.Context(), req.Course); err != nil {
			log.Error("history: clear failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "could not clear history")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "history cleared"})
}

// writeJSON encodes v as the JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
