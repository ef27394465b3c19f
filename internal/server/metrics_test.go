package server

import (
	"net/http"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

// gatherCounter sums a counter family's samples, optionally filtered by a
// single label name/value pair.
func gatherCounter(t *testing.T, s *Server, family, labelName, labelValue string) float64 {
	t.Helper()

	families, err := s.cfg.MetricsRegistry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sum float64
	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelName != "" && !hasLabel(m, labelName, labelValue) {
				continue
			}
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func Test_Metrics_IngestOutcomeCounted(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodPost, "/api/ingest",
		`{"url":"https://example.edu/sites/astro101/"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest failed: %d", w.Code)
	}

	if got := gatherCounter(t, s, "alfred_ingest_requests_total", "outcome", "ok"); got != 1 {
		t.Errorf("ingest ok counter: got %v, want 1", got)
	}
}

func Test_Metrics_AskEngineLabelled(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodPost, "/api/ask",
		`{"question":"q","course":"astro101","engine":"Robin"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("ask failed: %d", w.Code)
	}

	if got := gatherCounter(t, s, "alfred_ask_requests_total", "engine", "Robin"); got != 1 {
		t.Errorf("ask engine counter: got %v, want 1", got)
	}
}

func Test_Metrics_HTTPRequestsCounted(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t, nil)

	doJSON(t, s, http.MethodGet, "/api/health", "")
	doJSON(t, s, http.MethodGet, "/api/health", "")

	if got := gatherCounter(t, s, "alfred_http_requests_total", "handler", "health"); got != 2 {
		t.Errorf("http counter for health handler: got %v, want 2", got)
	}
}

func Test_Metrics_EndpointServesRegistry(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t, nil)

	// Touch an instrumented endpoint first so something is registered.
	doJSON(t, s, http.MethodGet, "/api/health", "")

	w := doJSON(t, s, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "alfred_http_requests_total") {
		t.Error("exposition output missing alfred_http_requests_total")
	}
}
