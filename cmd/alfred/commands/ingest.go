package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haxtheweb/alfred-go/internal/ingest"
	"github.com/haxtheweb/alfred-go/internal/logging"
)

// NewIngestCmd constructs the `alfred ingest` command, which renders course
// sites to text and indexes them into the Qdrant vector store.
func NewIngestCmd() *cobra.Command {
	var urls []string
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest HAX course sites into the vector store",
		Long: `Render one or more HAX course sites to text, chunk and embed the content,
and store the result in Qdrant. Each site lands in its own collection named
after the site slug; re-ingesting a site replaces its collection entirely.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  EMBEDDING_PROVIDER   Embedding backend: openai, azure, ollama (default: openai)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  alfred ingest --url https://oer.hax.psu.edu/sites/astro-101/
  alfred ingest --url https://oer.hax.psu.edu/sites/astro-101/ --url https://oer.hax.psu.edu/sites/chem-110/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if len(urls) == 0 {
				return fmt.Errorf("ingest: at least one --url is required")
			}

			// Fail on bad URLs before touching the embedder or the store.
			for _, u := range urls {
				if _, err := ingest.CollectionSlug(u); err != nil {
					return fmt.Errorf("ingest: %w", err)
				}
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			store, err := buildVectorStore(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer store.Close()

			pipeline, err := ingest.NewPipeline(emb, store, &ingest.Config{
				ChunkSize: chunkSize,
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			for _, u := range urls {
				log.Info("ingesting site", slog.String("url", u))
				result, err := pipeline.IngestURL(ctx, u)
				if err != nil {
					return fmt.Errorf("ingest: %s: %w", u, err)
				}
				log.Info("site ingested",
					slog.String("collection", result.Collection),
					slog.Int("chunks", result.Chunks),
				)
			}

			log.Info("ingestion complete", slog.Int("sites", len(urls)))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&urls, "url", "u", nil, "Course site URL to ingest (repeatable)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Maximum characters per chunk (default: 2048)")

	return cmd
}
