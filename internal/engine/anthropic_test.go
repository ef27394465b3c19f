package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func Test_AnthropicGenerator_RequestShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/complete" {
			t.Errorf("want path /v1/complete, got %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("want x-api-key header, got %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("want anthropic-version 2023-06-01, got %q", got)
		}

		var req anthropicCompleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if want := "\n\nHuman: why is the sky blue?\n\nAssistant:"; req.Prompt != want {
			t.Errorf("prompt: want %q, got %q", want, req.Prompt)
		}
		if req.Model != "claude-v1" {
			t.Errorf("model: want claude-v1, got %q", req.Model)
		}
		if req.MaxTokensToSample != 1000 {
			t.Errorf("max_tokens_to_sample: want 1000, got %d", req.MaxTokensToSample)
		}

		json.NewEncoder(w).Encode(anthropicCompleteResponse{
			Completion: " Rayleigh scattering.",
			StopReason: "stop_sequence",
		})
	}))
	defer srv.Close()

	g := NewAnthropicGenerator(&AnthropicConfig{
		Name:    "Robin",
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})

	answer, err := g.Generate(context.Background(), "why is the sky blue?")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer.Text != " Rayleigh scattering." {
		t.Errorf("answer text: got %q", answer.Text)
	}
	if answer.Raw == nil {
		t.Error("raw payload not preserved")
	}
}

func Test_AnthropicGenerator_SurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "prompt too long"},
		})
	}))
	defer srv.Close()

	g := NewAnthropicGenerator(&AnthropicConfig{Name: "Robin", BaseURL: srv.URL, APIKey: "k"})
	if _, err := g.Generate(context.Background(), "q"); err == nil {
		t.Fatal("want error from 400 response, got nil")
	}
}
