package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/haxtheweb/alfred-go/internal/chunker"
	"github.com/haxtheweb/alfred-go/internal/rag"
)

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per chunk.
	// Defaults to chunker.DefaultChunkSize if zero.
	ChunkSize int

	// HTTPTimeout is the timeout for the render-service fetch.
	// Rendering a full site can be slow; defaults to 120s if zero.
	HTTPTimeout time.Duration

	// UserAgent is the HTTP User-Agent header sent with fetch requests.
	UserAgent string

	// RenderEndpoint overrides the render service URL.
	// Defaults to DefaultRenderEndpoint.
	RenderEndpoint string

	// RenderMagic overrides the web components CDN passed to the render service.
	RenderMagic string
}

// Result summarizes a completed ingestion.
type Result struct {
	// Collection is the collection name the site was ingested into.
	Collection string

	// Chunks is the number of chunks embedded and stored.
	Chunks int
}

// Pipeline orchestrates the render, chunk, embed, and replace flow for a
// course site. Concurrent ingestions of the same course are coalesced into a
// single run; distinct courses proceed independently.
type Pipeline struct {
	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks.
	store rag.VectorStore

	// splitter breaks the rendered document into sentence-packed chunks.
	splitter *chunker.Chunker

	// cfg holds the resolved pipeline configuration.
	cfg *Config

	// httpClient is the HTTP client used for the render-service fetch.
	httpClient *http.Client

	// group coalesces concurrent ingestions keyed by collection slug.
	group singleflight.Group
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingest: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingest: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultChunkSize
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 120 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "alfred-go/1.0 (course site ingestion)"
	}
	if cfg.RenderEndpoint == "" {
		cfg.RenderEndpoint = DefaultRenderEndpoint
	}
	if cfg.RenderMagic == "" {
		cfg.RenderMagic = defaultRenderMagic
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		splitter: chunker.New(cfg.ChunkSize),
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}, nil
}

// IngestURL renders the course site, chunks and embeds its content, and
// replaces the course's collection with the new records. Concurrent calls for
// the same course share one run and one result.
func (p *Pipeline) IngestURL(ctx context.Context, siteURL string) (*Result, error) {
	slug, err := CollectionSlug(siteURL)
	if err != nil {
		return nil, err
	}

	v, err, _ := p.group.Do(slug, func() (interface{}, error) {
		return p.run(ctx, slug, siteURL)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// run executes one full ingestion for a resolved slug. The collection is
// recreated before embedding starts; a failed run leaves it empty rather than
// holding stale records from a prior ingestion.
func (p *Pipeline) run(ctx context.Context, slug, siteURL string) (*Result, error) {
	if err := p.store.Recreate(ctx, slug); err != nil {
		return nil, fmt.Errorf("ingest: recreate collection %q: %w", slug, err)
	}

	content, err := p.fetch(ctx, renderURL(p.cfg.RenderEndpoint, p.cfg.RenderMagic, siteURL))
	if err != nil {
		return nil, fmt.Errorf("ingest: render failed for %s: %w", siteURL, err)
	}

	chunks := p.splitter.Split(content)

	// Chunks are embedded one per call so a single oversized or rejected
	// chunk fails with its index attached instead of poisoning a batch.
	records := make([]rag.Record, 0, len(chunks))
	for i, chunk := range chunks {
		embeddings, err := p.embedder.Embed(ctx, []string{chunk})
		if err != nil {
			return nil, fmt.Errorf("ingest: embedding chunk %d of %d failed: %w", i, len(chunks), err)
		}
		if len(embeddings) != 1 {
			return nil, fmt.Errorf("ingest: expected 1 embedding for chunk %d, got %d", i, len(embeddings))
		}
		records = append(records, rag.Record{
			ID:     strconv.Itoa(i),
			Vector: embeddings[0],
			Metadata: map[string]string{
				rag.MetadataChunkText: chunk,
			},
		})
	}

	if len(records) > 0 {
		if err := p.store.UpsertBatch(ctx, slug, records); err != nil {
			return nil, fmt.Errorf("ingest: upsert into %q failed: %w", slug, err)
		}
	}

	return &Result{Collection: slug, Chunks: len(records)}, nil
}

// fetch retrieves the rendered site content.
func (p *Pipeline) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/plain, text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(body), nil
}
