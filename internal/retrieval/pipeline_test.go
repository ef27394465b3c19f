package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/haxtheweb/alfred-go/internal/rag"
)

// stubEmbedder returns a fixed vector for any input, or a fixed error.
type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

// trackingStore wraps a MemoryStore and records whether Query was called.
type trackingStore struct {
	*rag.MemoryStore
	queried bool
}

func (t *trackingStore) Query(ctx context.Context, name string, vector []float32, topK int) ([]rag.Match, error) {
	t.queried = true
	return t.MemoryStore.Query(ctx, name, vector, topK)
}

func seedCourse(t *testing.T, store rag.VectorStore, course string, records []rag.Record) {
	t.Helper()
	ctx := context.Background()
	if err := store.Recreate(ctx, course); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if err := store.UpsertBatch(ctx, course, records); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

func Test_Context_JoinsChunksInSimilarityOrder(t *testing.T) {
	t.Parallel()

	store := rag.NewMemoryStore()
	seedCourse(t, store, "astro101", []rag.Record{
		{ID: "0", Vector: []float32{1, 0}, Metadata: map[string]string{rag.MetadataChunkText: "closest chunk."}},
		{ID: "1", Vector: []float32{0, 1}, Metadata: map[string]string{rag.MetadataChunkText: "farthest chunk."}},
		{ID: "2", Vector: []float32{0.8, 0.2}, Metadata: map[string]string{rag.MetadataChunkText: "middle chunk."}},
	})

	p, err := NewPipeline(&stubEmbedder{vector: []float32{1, 0}}, store, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	got, err := p.Context(context.Background(), "astro101", "what is closest?")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	want := "closest chunk. middle chunk. farthest chunk."
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func Test_Context_DropsMatchesWithoutChunkText(t *testing.T) {
	t.Parallel()

	store := rag.NewMemoryStore()
	seedCourse(t, store, "chem110", []rag.Record{
		{ID: "0", Vector: []float32{1, 0}, Metadata: map[string]string{rag.MetadataChunkText: "kept."}},
		{ID: "1", Vector: []float32{1, 0}, Metadata: map[string]string{"other": "ignored"}},
		{ID: "2", Vector: []float32{1, 0}, Metadata: map[string]string{rag.MetadataChunkText: "also kept."}},
	})

	p, err := NewPipeline(&stubEmbedder{vector: []float32{1, 0}}, store, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	got, err := p.Context(context.Background(), "chem110", "q")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if strings.Contains(got, "ignored") {
		t.Errorf("match without chunk text leaked into context: %q", got)
	}
	if !strings.Contains(got, "kept.") || !strings.Contains(got, "also kept.") {
		t.Errorf("valid chunks missing from context: %q", got)
	}
}

func Test_Context_EmbedFailureShortCircuitsBeforeStore(t *testing.T) {
	t.Parallel()

	store := &trackingStore{MemoryStore: rag.NewMemoryStore()}
	p, err := NewPipeline(&stubEmbedder{err: errors.New("embedding down")}, store, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if _, err := p.Context(context.Background(), "astro101", "q"); err == nil {
		t.Fatal("want error when embedding fails, got nil")
	}
	if store.queried {
		t.Error("store was queried after embedding failure")
	}
}

func Test_Context_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	// Querying a collection that was never created errors in the memory store.
	p, err := NewPipeline(&stubEmbedder{vector: []float32{1}}, rag.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if _, err := p.Context(context.Background(), "missing", "q"); err == nil {
		t.Fatal("want error for unknown collection, got nil")
	}
}

func Test_Context_RespectsTopK(t *testing.T) {
	t.Parallel()

	store := rag.NewMemoryStore()
	records := make([]rag.Record, 0, 20)
	for i := range 20 {
		records = append(records, rag.Record{
			ID:       string(rune('a' + i)),
			Vector:   []float32{1, float32(i)},
			Metadata: map[string]string{rag.MetadataChunkText: "chunk."},
		})
	}
	seedCourse(t, store, "bio220", records)

	p, err := NewPipeline(&stubEmbedder{vector: []float32{1, 0}}, store, &Config{TopK: 3})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	got, err := p.Context(context.Background(), "bio220", "q")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if n := strings.Count(got, "chunk."); n != 3 {
		t.Errorf("want 3 chunks in context, got %d", n)
	}
}
