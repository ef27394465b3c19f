package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
)

// Validate checks that the config names a known backend and a model.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI, BackendOllama, BackendGemini, BackendArk:
	default:
		return fmt.Errorf("provider: unknown backend %q (valid values: openai, ollama, gemini, ark)", c.Backend)
	}
	if c.Model == "" {
		return fmt.Errorf("provider: model name is required for backend %q", c.Backend)
	}
	return nil
}

// New constructs a ChatModel from an explicit Config, delegating to the
// appropriate backend factory function. It validates the config first so
// callers get a clear error at startup rather than on the first request.
func New(ctx context.Context, cfg *Config) (model.ToolCallingChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendOpenAI:
		return newOpenAI(ctx, cfg)
	case BackendOllama:
		return newOllama(ctx, cfg)
	case BackendGemini:
		return newGemini(ctx, cfg)
	case BackendArk:
		return newArk(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider: unknown backend %q", cfg.Backend)
	}
}
