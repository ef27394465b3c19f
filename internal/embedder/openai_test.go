package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func Test_OpenAIEmbedder_EmbedsBatchInOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("want path /embeddings, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("want bearer auth, got %q", got)
		}

		var req openaiEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "text-embedding-ada-002" {
			t.Errorf("want model text-embedding-ada-002, got %q", req.Model)
		}
		if req.Dimensions != 0 {
			t.Errorf("ada-002 request must not carry dimensions, got %d", req.Dimensions)
		}

		// Reply out of order to exercise the index-based reassembly.
		resp := map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0.3, 0.4}},
				{"index": 0, "embedding": []float32{0.1, 0.2}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Model:      "text-embedding-ada-002",
		Dimensions: 1536,
	})

	got, err := e.Embed(context.Background(), []string{"first chunk. ", "second chunk. "})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 embeddings, got %d", len(got))
	}
	if got[0][0] != 0.1 || got[1][0] != 0.3 {
		t.Errorf("embeddings not reordered by index: %v", got)
	}
}

func Test_OpenAIEmbedder_SurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "bad-key",
		Model:   "text-embedding-ada-002",
	})

	_, err := e.Embed(context.Background(), []string{"chunk"})
	if err == nil {
		t.Fatal("want error from 401 response, got nil")
	}
}

func Test_OpenAIEmbedder_CountMismatchFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float32{0.1}},
			},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "text-embedding-ada-002",
	})

	if _, err := e.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("want error on embedding count mismatch, got nil")
	}
}

func Test_OpenAIEmbedder_AzureRequestShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("api-key"); got != "azure-key" {
			t.Errorf("want api-key header, got %q", got)
		}
		if got := r.URL.Query().Get("api-version"); got != "2025-04-01-preview" {
			t.Errorf("want api-version param, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float32{0.5}},
			},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:    srv.URL,
		APIKey:     "azure-key",
		Model:      "text-embedding-ada-002",
		Azure:      true,
		APIVersion: "2025-04-01-preview",
	})

	if _, err := e.Embed(context.Background(), []string{"chunk"}); err != nil {
		t.Fatalf("embed: %v", err)
	}
}

func Test_Backend_DefaultsToOpenAI(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "")
	if got := Backend(); got != "openai" {
		t.Errorf("want openai, got %q", got)
	}

	t.Setenv("EMBEDDING_PROVIDER", "ollama")
	if got := Backend(); got != "ollama" {
		t.Errorf("want ollama, got %q", got)
	}
}

func Test_DefaultDimensions(t *testing.T) {
	t.Setenv("EMBEDDING_DIMENSIONS", "")
	if got := DefaultDimensions("openai"); got != 1536 {
		t.Errorf("openai: want 1536, got %d", got)
	}
	if got := DefaultDimensions("ollama"); got != 768 {
		t.Errorf("ollama: want 768, got %d", got)
	}

	t.Setenv("EMBEDDING_DIMENSIONS", "3072")
	if got := DefaultDimensions("openai"); got != 3072 {
		t.Errorf("override: want 3072, got %d", got)
	}
}
