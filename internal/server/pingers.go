package server

import (
	"context"
	"fmt"
)

// pingable is any dependency exposing a Ping method. *rag.QdrantStore
// satisfies it.
type pingable interface {
	Ping(ctx context.Context) error
}

// StorePinger probes the vector store for readiness. It satisfies the Pinger
// interface and is used by GET /api/ready.
type StorePinger struct {
	// store is the vector store to probe.
	store pingable
	// name identifies the store in readiness responses (e.g. "qdrant").
	name string
}

// NewStorePinger constructs a StorePinger for the given store and label.
func NewStorePinger(store pingable, name string) *StorePinger {
	return &StorePinger{store: store, name: name}
}

// Name returns the dependency label used in readiness responses.
func (p *StorePinger) Name() string { return p.name }

// Ping delegates to the store's own health check.
// Returns nil if the store is reachable, or a descriptive error otherwise.
func (p *StorePinger) Ping(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
