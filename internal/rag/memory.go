package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore using brute-force cosine
// similarity. It backs pipeline tests and local development where no Qdrant
// instance is available; it is not meant for large collections.
type MemoryStore struct {
	// mu guards collections.
	mu sync.RWMutex

	// collections maps collection name to its stored records.
	collections map[string][]Record
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Record)}
}

// Recreate drops any existing collection with the given name and registers a
// fresh empty one. There is no deletion latency to poll for in memory.
func (s *MemoryStore) Recreate(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = nil
	return nil
}

// UpsertBatch appends all records to the named collection.
// The collection must have been created via Recreate first.
func (s *MemoryStore) UpsertBatch(_ context.Context, name string, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("memory store: collection %q does not exist", name)
	}
	s.collections[name] = append(s.collections[name], records...)
	return nil
}

// Query returns at most topK records by descending cosine similarity.
func (s *MemoryStore) Query(_ context.Context, name string, vector []float32, topK int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("memory store: collection %q does not exist", name)
	}

	matches := make([]Match, 0, len(records))
	for _, rec := range records {
		matches = append(matches, Match{
			ID:       rec.ID,
			Score:    cosine(rec.Vector, vector),
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// List returns the names of all collections sorted lexicographically.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the number of records in the named collection.
// Test helper; not part of the VectorStore interface.
func (s *MemoryStore) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[name])
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// cosine computes the cosine similarity between two vectors. Mismatched
// lengths compare over the shorter prefix; zero vectors score zero.
func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
