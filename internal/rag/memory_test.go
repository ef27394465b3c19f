package rag

import (
	"context"
	"testing"
)

// rec builds a Record with chunk text metadata, mirroring what ingestion writes.
func rec(id string, vector []float32, text string) Record {
	return Record{
		ID:       id,
		Vector:   vector,
		Metadata: map[string]string{MetadataChunkText: text},
	}
}

func Test_MemoryStore_QueryOrdersByDescendingSimilarity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemoryStore()
	if err := s.Recreate(ctx, "astro"); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	err := s.UpsertBatch(ctx, "astro", []Record{
		rec("0", []float32{1, 0}, "aligned"),
		rec("1", []float32{0, 1}, "orthogonal"),
		rec("2", []float32{0.9, 0.1}, "near"),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := s.Query(ctx, "astro", []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("want 3 matches, got %d", len(matches))
	}
	if matches[0].ID != "0" || matches[1].ID != "2" || matches[2].ID != "1" {
		t.Errorf("unexpected order: %s, %s, %s", matches[0].ID, matches[1].ID, matches[2].ID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, matches[i].Score, matches[i-1].Score)
		}
	}
}

func Test_MemoryStore_QueryRespectsTopK(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemoryStore()
	if err := s.Recreate(ctx, "course"); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	var records []Record
	for i := range 20 {
		records = append(records, rec(itoa(i), []float32{float32(i), 1}, "chunk"))
	}
	if err := s.UpsertBatch(ctx, "course", records); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := s.Query(ctx, "course", []float32{1, 1}, 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) > 5 {
		t.Errorf("want at most 5 matches, got %d", len(matches))
	}
}

// Test_MemoryStore_RecreateReplacesContents verifies the full-replace
// lifecycle: after a second Recreate+UpsertBatch cycle, the collection holds
// exactly the second batch, never a superset of both.
func Test_MemoryStore_RecreateReplacesContents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemoryStore()
	if err := s.Recreate(ctx, "course"); err != nil {
		t.Fatalf("recreate 1: %v", err)
	}
	first := []Record{
		rec("0", []float32{1, 0}, "a"),
		rec("1", []float32{0, 1}, "b"),
		rec("2", []float32{1, 1}, "c"),
	}
	if err := s.UpsertBatch(ctx, "course", first); err != nil {
		t.Fatalf("upsert 1: %v", err)
	}

	if err := s.Recreate(ctx, "course"); err != nil {
		t.Fatalf("recreate 2: %v", err)
	}
	second := []Record{
		rec("0", []float32{1, 0}, "x"),
		rec("1", []float32{0, 1}, "y"),
	}
	if err := s.UpsertBatch(ctx, "course", second); err != nil {
		t.Fatalf("upsert 2: %v", err)
	}

	if got := s.Count("course"); got != len(second) {
		t.Errorf("want %d records after re-ingest, got %d", len(second), got)
	}
}

func Test_MemoryStore_QueryUnknownCollectionFails(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if _, err := s.Query(context.Background(), "missing", []float32{1}, 5); err == nil {
		t.Error("want error for unknown collection, got nil")
	}
}

func Test_MemoryStore_ListIsSorted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemoryStore()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.Recreate(ctx, name); err != nil {
			t.Fatalf("recreate %s: %v", name, err)
		}
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("want %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d]: want %q, got %q", i, want[i], names[i])
		}
	}
}

func Test_Match_ChunkText(t *testing.T) {
	t.Parallel()

	with := Match{Metadata: map[string]string{MetadataChunkText: "B. "}}
	if with.ChunkText() != "B. " {
		t.Errorf("want %q, got %q", "B. ", with.ChunkText())
	}
	without := Match{Metadata: map[string]string{}}
	if without.ChunkText() != "" {
		t.Errorf("want empty chunk text, got %q", without.ChunkText())
	}
}

// itoa avoids importing strconv for a two-digit loop counter.
func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return string(rune('0'+i/10)) + string(rune('0'+i%10))
}
