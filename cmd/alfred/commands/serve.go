package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/haxtheweb/alfred-go/internal/history"
	"github.com/haxtheweb/alfred-go/internal/ingest"
	"github.com/haxtheweb/alfred-go/internal/logging"
	"github.com/haxtheweb/alfred-go/internal/retrieval"
	"github.com/haxtheweb/alfred-go/internal/server"
	"github.com/haxtheweb/alfred-go/internal/tracing"
)

// NewServeCmd constructs the `alfred serve` command, which starts the HTTP
// server backing the course assistant frontend.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Alfred HTTP server",
		Long: `Start the Alfred HTTP server on localhost.

The server exposes the ingestion, ask, and course listing API consumed by the
course assistant frontend.

Examples:
  alfred serve
  alfred serve --port 9090
  ENGINE_DEFAULT=Robin alfred serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			// Setup Langfuse tracing, opt-in and a no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			store, err := buildVectorStore(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer store.Close()

			ingester, err := ingest.NewPipeline(emb, store, nil)
			if err != nil {
				return fmt.Errorf("serve: failed to create ingest pipeline: %w", err)
			}

			retriever, err := retrieval.NewPipeline(emb, store, nil)
			if err != nil {
				return fmt.Errorf("serve: failed to create retrieval pipeline: %w", err)
			}

			router, err := buildRouter(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			// Open conversation history store. ALFRED_HISTORY_DB overrides the
			// default path (~/.alfred/history.db). Set to "disabled" to disable.
			var historyStore history.ConversationStore
			dbPath := os.Getenv("ALFRED_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = history.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					hs, hsErr := history.Open(dbPath)
					if hsErr != nil {
						log.Warn("history: failed to open store, disabling", slog.Any("error", hsErr))
					} else {
						historyStore = hs
						defer func() { _ = hs.Close() }()
						log.Info("history: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via ALFRED_HISTORY_DB=disabled")
			}

			if host == "" {
				host = os.Getenv("ALFRED_HOST")
			}
			if port == 0 {
				port = getEnvInt("ALFRED_PORT", 0)
			}

			srv, err := server.New(server.Deps{
				Ingester:  ingester,
				Retriever: retriever,
				Router:    router,
				Lister:    store,
				History:   historyStore,
			}, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: []server.Pinger{server.NewStorePinger(store, "qdrant")},
				APIKey:  os.Getenv("ALFRED_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host address to bind to (default: 127.0.0.1)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "TCP port to listen on (default: 8080)")

	return cmd
}
