// Package retrieval builds the course context string for a question: embed
// the question, query the course's collection, filter matches that carry
// chunk text, and join the surviving chunks in similarity order.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/haxtheweb/alfred-go/internal/budget"
	"github.com/haxtheweb/alfred-go/internal/rag"
)

// DefaultTopK is the number of nearest chunks fetched per question.
const DefaultTopK = 15

// Config holds the configuration for the retrieval pipeline.
type Config struct {
	// TopK is the number of nearest chunks to fetch (default: DefaultTopK).
	TopK int

	// MaxContextTokens bounds the joined context size
	// (default: budget.DefaultMaxContextTokens).
	MaxContextTokens int
}

// Pipeline retrieves course context for questions. It is safe for concurrent
// use.
type Pipeline struct {
	// embedder converts the question into a query vector.
	embedder rag.Embedder

	// store answers similarity queries against course collections.
	store rag.VectorStore

	// cfg holds the resolved pipeline configuration.
	cfg *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("retrieval: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("retrieval: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = budget.DefaultMaxContextTokens
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
	}, nil
}

// Context returns the joined context string for a question against a course
// collection. Matches without chunk text metadata are dropped; the rest are
// joined with single spaces in descending similarity order, trimmed to the
// token budget. An empty string with a nil error means the collection had no
// usable matches.
func (p *Pipeline) Context(ctx context.Context, course, question string) (string, error) {
	vectors, err := p.embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("retrieval: embedding question failed: %w", err)
	}
	if len(vectors) != 1 {
		return "", fmt.Errorf("retrieval: expected 1 question embedding, got %d", len(vectors))
	}

	matches, err := p.store.Query(ctx, course, vectors[0], p.cfg.TopK)
	if err != nil {
		return "", fmt.Errorf("retrieval: query against %q failed: %w", course, err)
	}

	chunks := make([]string, 0, len(matches))
	for _, m := range matches {
		if text := m.ChunkText(); text != "" {
			chunks = append(chunks, text)
		}
	}

	chunks = budget.TrimChunks(chunks, p.cfg.MaxContextTokens)
	return strings.Join(chunks, " "), nil
}
