package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Anthropic text-completions API constants. The completions endpoint predates
// the messages API and uses the Human/Assistant turn format in a single
// prompt string.
const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	defaultAnthropicModel   = "claude-v1"

	// anthropicMaxTokens caps the sampled completion length.
	anthropicMaxTokens = 1000
)

// AnthropicGenerator implements Generator against the Anthropic text
// completions endpoint. It is safe for concurrent use.
type AnthropicGenerator struct {
	// name is the engine's display name.
	name string
	// baseURL is the API base (default: https://api.anthropic.com).
	baseURL string
	// apiKey is sent in the x-api-key header.
	apiKey string
	// model is the completion model name.
	model string
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// AnthropicConfig holds the settings for constructing an AnthropicGenerator.
type AnthropicConfig struct {
	// Name is the engine's display name.
	Name string
	// BaseURL overrides the default API base URL.
	BaseURL string
	// APIKey is the Anthropic API key.
	APIKey string
	// Model is the completion model name (default: claude-v1).
	Model string
}

// NewAnthropicGenerator constructs an AnthropicGenerator from the given config.
func NewAnthropicGenerator(cfg *AnthropicConfig) *AnthropicGenerator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicGenerator{
		name:    cfg.Name,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// anthropicCompleteRequest is the JSON body sent to /v1/complete.
type anthropicCompleteRequest struct {
	Prompt            string `json:"prompt"`
	Model             string `json:"model"`
	MaxTokensToSample int    `json:"max_tokens_to_sample"`
}

// anthropicCompleteResponse is the JSON body returned from /v1/complete.
type anthropicCompleteResponse struct {
	Completion string `json:"completion"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Name returns the engine's display name.
func (g *AnthropicGenerator) Name() string { return g.name }

// Generate sends the prompt in the Human/Assistant turn format and returns
// the sampled completion.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (Answer, error) {
	body := anthropicCompleteRequest{
		Prompt:            fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", prompt),
		Model:             g.model,
		MaxTokensToSample: anthropicMaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Answer{}, fmt.Errorf("engine %s: marshal request: %w", g.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/complete", bytes.NewReader(payload))
	if err != nil {
		return Answer{}, fmt.Errorf("engine %s: create request: %w", g.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("engine %s: request failed: %w", g.name, err)
	}
	defer resp.Body.Close()

	var result anthropicCompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Answer{}, fmt.Errorf("engine %s: decode response: %w", g.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != nil {
			msg = result.Error.Message
		}
		return Answer{}, fmt.Errorf("engine %s: %s", g.name, msg)
	}

	return Answer{Text: result.Completion, Raw: result}, nil
}
