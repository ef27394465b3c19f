package engine

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelGenerator adapts an eino chat model into a Generator. The Alfred,
// Catwoman, and Penguin engines are all chat models behind this adapter; only
// their prompting strategy differs.
type ChatModelGenerator struct {
	// name is the engine's display name.
	name string
	// model is the underlying chat model.
	model model.BaseChatModel
}

// NewChatModelGenerator wraps a chat model as a named Generator.
func NewChatModelGenerator(name string, m model.BaseChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{name: name, model: m}
}

// Name returns the engine's display name.
func (g *ChatModelGenerator) Name() string { return g.name }

// Generate sends the prompt as a single user message and normalizes the reply.
func (g *ChatModelGenerator) Generate(ctx context.Context, prompt string) (Answer, error) {
	msgs := []*schema.Message{
		schema.UserMessage(prompt),
	}
	resp, err := g.model.Generate(ctx, msgs)
	if err != nil {
		return Answer{}, fmt.Errorf("engine %s: generate: %w", g.name, err)
	}
	if resp == nil {
		return Answer{}, fmt.Errorf("engine %s: model returned no message", g.name)
	}
	return Answer{Text: resp.Content, Raw: resp}, nil
}
