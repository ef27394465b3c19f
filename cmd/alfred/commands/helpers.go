package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/haxtheweb/alfred-go/internal/embedder"
	"github.com/haxtheweb/alfred-go/internal/engine"
	"github.com/haxtheweb/alfred-go/internal/provider"
	"github.com/haxtheweb/alfred-go/internal/rag"
)

// defaultEngine is the engine used when ENGINE_DEFAULT is unset and a request
// names no engine or an unknown one.
const defaultEngine = "Alfred"

// buildEmbedder validates the embedding configuration and constructs the
// embedder selected by EMBEDDING_PROVIDER.
func buildEmbedder(log *slog.Logger) (rag.Embedder, error) {
	if err := embedder.ValidateForRAG(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised", slog.String("provider", embedder.Backend()))
	return emb, nil
}

// buildVectorStore connects to Qdrant using the QDRANT_* environment
// variables. The vector size follows the configured embedding backend.
func buildVectorStore(log *slog.Logger) (*rag.QdrantStore, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	vectorSize := uint64(embedder.DefaultDimensions(embedder.Backend())) //nolint:gosec // dimensions are bounded

	store, err := rag.NewQdrantStore(&rag.QdrantConfig{
		Host:       host,
		Port:       port,
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}
	log.Info("qdrant store ready", slog.String("host", host), slog.Int("port", port))
	return store, nil
}

// chatProviderConfig resolves the provider configuration for the chat-model
// backed engines from the environment. ENGINE_BACKEND re-points the engines
// at a different provider (openai, ollama, gemini, ark) without code changes.
func chatProviderConfig() *provider.Config {
	backend := provider.Backend(getEnvOrDefault("ENGINE_BACKEND", string(provider.BackendOpenAI)))

	cfg := &provider.Config{
		Backend:     backend,
		MaxTokens:   getEnvInt("MODEL_MAX_TOKENS", 0),
		Temperature: getEnvFloat32("MODEL_TEMPERATURE", 0),
	}

	switch backend {
	case provider.BackendOllama:
		cfg.Model = getEnvOrDefault("OLLAMA_MODEL", "llama3")
		cfg.BaseURL = os.Getenv("OLLAMA_HOST")
	case provider.BackendGemini:
		cfg.Model = getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash")
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	case provider.BackendArk:
		cfg.Model = os.Getenv("ARK_MODEL")
		cfg.APIKey = os.Getenv("ARK_API_KEY")
		cfg.BaseURL = os.Getenv("ARK_BASE_URL")
	default:
		cfg.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-4-turbo")
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg
}

// buildRouter constructs the answer engine router from the environment.
// Alfred and Catwoman share one chat model (context and bare prompting
// respectively), Penguin runs against Ollama, and Robin talks to the
// Anthropic completions API. Engines with missing credentials are skipped
// with a warning rather than failing startup.
func buildRouter(ctx context.Context, log *slog.Logger) (*engine.Router, error) {
	router := engine.NewRouter()

	chatCfg := chatProviderConfig()
	chatModel, err := provider.New(ctx, chatCfg)
	if err != nil {
		log.Warn("engines: chat backend unavailable, Alfred and Catwoman disabled",
			slog.String("backend", string(chatCfg.Backend)),
			slog.Any("error", err),
		)
	} else {
		router.Register(engine.NewChatModelGenerator("Alfred", chatModel), true)
		router.Register(engine.NewChatModelGenerator("Catwoman", chatModel), false)
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		router.Register(engine.NewAnthropicGenerator(&engine.AnthropicConfig{
			Name:    "Robin",
			BaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
			APIKey:  key,
			Model:   os.Getenv("ANTHROPIC_MODEL"),
		}), true)
	} else {
		log.Warn("engines: ANTHROPIC_API_KEY not set, Robin disabled")
	}

	if chatCfg.Backend != provider.BackendOllama {
		ollamaModel, err := provider.New(ctx, &provider.Config{
			Backend:     provider.BackendOllama,
			Model:       getEnvOrDefault("OLLAMA_MODEL", "llama3"),
			BaseURL:     os.Getenv("OLLAMA_HOST"),
			MaxTokens:   chatCfg.MaxTokens,
			Temperature: chatCfg.Temperature,
		})
		if err != nil {
			log.Warn("engines: ollama unavailable, Penguin disabled", slog.Any("error", err))
		} else {
			router.Register(engine.NewChatModelGenerator("Penguin", ollamaModel), true)
		}
	} else if chatModel != nil {
		router.Register(engine.NewChatModelGenerator("Penguin", chatModel), true)
	}

	if len(router.Engines()) == 0 {
		return nil, fmt.Errorf("engines: no engine could be initialised, check API keys")
	}

	name := getEnvOrDefault("ENGINE_DEFAULT", defaultEngine)
	if err := router.SetDefault(name); err != nil {
		fallback := router.Engines()[0]
		log.Warn("engines: configured default unavailable, falling back",
			slog.String("configured", name),
			slog.String("fallback", fallback),
		)
		if err := router.SetDefault(fallback); err != nil {
			return nil, err
		}
	}

	log.Info("engines ready", slog.Any("engines", router.Engines()))
	return router, nil
}

// getEnvOrDefault returns the value of the env var, or fallback if unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env var parsed as an int, or fallback if unset or
// unparseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvFloat32 returns the env var parsed as a float32, or fallback if unset
// or unparseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
