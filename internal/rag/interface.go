// Package rag defines the contracts for retrieval-augmented generation over
// per-course vector collections: embedding, vector storage, and the record
// shapes that flow between them. Concrete backends (Qdrant, in-memory)
// satisfy these interfaces so the pipelines never depend on a specific store.
package rag

import (
	"context"
)

// MetadataChunkText is the metadata key under which every record stores the
// raw chunk text. Retrieval filters out matches missing this key.
const MetadataChunkText = "chunk_text"

// Record is a single embedded chunk as written into a collection during
// ingestion. Records are immutable after upsert.
type Record struct {
	// ID is the positional chunk id, "0".."N-1", unique within a collection.
	ID string

	// Vector is the embedding of the chunk text.
	Vector []float32

	// Metadata holds the stored payload; MetadataChunkText carries the text.
	Metadata map[string]string
}

// Match is a single similarity-search result returned by a store query.
type Match struct {
	// ID is the record id of the matched chunk.
	ID string

	// Score is the similarity score reported by the store, higher is closer.
	Score float32

	// Metadata is the payload stored with the record.
	Metadata map[string]string
}

// ChunkText returns the stored chunk text, or "" when the match carries none.
func (m Match) ChunkText() string {
	return m.Metadata[MetadataChunkText]
}

// VectorStore manages named per-course collections of vector records.
// Implementations must be safe to call from multiple goroutines.
//
// Read-path failures (Query, List) surface as errors that callers degrade to
// "no results available"; destructive operations (Recreate) propagate errors
// so the caller's retry-or-abort decision stays explicit.
type VectorStore interface {
	// Recreate destroys any existing collection with the given name, waits
	// until the deletion is confirmed, then creates a fresh empty collection.
	// Every ingestion fully replaces its collection through this call.
	Recreate(ctx context.Context, name string) error

	// UpsertBatch writes all records into the named collection. No partial
	// success is reported; any write error propagates to the caller.
	UpsertBatch(ctx context.Context, name string, records []Record) error

	// Query returns at most topK records nearest to vector, ordered by
	// descending similarity as reported by the store.
	Query(ctx context.Context, name string, vector []float32, topK int) ([]Match, error)

	// List returns the names of all known collections in stable order.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder converts text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
