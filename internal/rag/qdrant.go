package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// Collection geometry shared by every course collection. The embedding model
// fixes the dimensionality; the similarity metric is cosine throughout.
const (
	// DefaultVectorSize matches the OpenAI ada-002 embedding dimension.
	DefaultVectorSize = 1536

	// deletePollInterval is the initial wait between deletion-confirmation
	// checks while a collection is being torn down.
	deletePollInterval = 5 * time.Second

	// deletePollMaxRetries bounds the deletion-confirmation poll so a stuck
	// deletion surfaces as an error instead of spinning forever.
	deletePollMaxRetries = 12
)

// errCollectionStillExists signals that a deleted collection is still
// visible and the confirmation poll should retry.
var errCollectionStillExists = errors.New("collection still exists")

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// VectorSize is the dimensionality of stored embeddings
	// (default: DefaultVectorSize).
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements VectorStore backed by a Qdrant instance. Unlike a
// single fixed collection, it manages one collection per course slug.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore creates a QdrantStore from the given config. No collection
// is created up front; collections come and go with course ingestions.
func NewQdrantStore(cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.VectorSize == 0 {
		cfg.VectorSize = DefaultVectorSize
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &QdrantStore{client: client, cfg: cfg}, nil
}

// Recreate drops any existing collection with the given name, polls until the
// deletion is confirmed, then creates a fresh cosine collection. The poll is
// bounded: exponential backoff from deletePollInterval with at most
// deletePollMaxRetries checks before a terminal error.
func (s *QdrantStore) Recreate(ctx context.Context, name string) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}

	if exists {
		if err := s.client.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("qdrant: failed to delete collection %q: %w", name, err)
		}
		if err := s.waitDeleted(ctx, name); err != nil {
			return err
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", name, err)
	}

	return nil
}

// waitDeleted blocks until the named collection is no longer visible.
// Each check suspends on the backoff timer, never busy-waits.
func (s *QdrantStore) waitDeleted(ctx context.Context, name string) error {
	check := func() error {
		exists, err := s.client.CollectionExists(ctx, name)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("qdrant: existence check during deletion: %w", err))
		}
		if exists {
			return errCollectionStillExists
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = deletePollInterval
	bo.MaxElapsedTime = 0 // bounded by retry count, not wall clock

	err := backoff.Retry(check, backoff.WithContext(
		backoff.WithMaxRetries(bo, deletePollMaxRetries), ctx))
	if err != nil {
		return fmt.Errorf("qdrant: collection %q not confirmed deleted: %w", name, err)
	}
	return nil
}

// UpsertBatch writes all records into the named collection in one call,
// waiting for the write to be applied before returning.
func (s *QdrantStore) UpsertBatch(ctx context.Context, name string, records []Record) error {
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, rec := range records {
		payload := make(map[string]interface{}, len(rec.Metadata))
		for k, v := range rec.Metadata {
			payload[k] = v
		}
		points = append(points, &qdrant.PointStruct{
			Id:      pointID(rec.ID),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert into %q failed: %w", name, err)
	}

	return nil
}

// Query performs a cosine similarity search against the named collection and
// returns at most topK matches in descending similarity order.
func (s *QdrantStore) Query(ctx context.Context, name string, vector []float32, topK int) ([]Match, error) {
	limit := uint64(topK)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query against %q failed: %w", name, err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		m := Match{
			ID:       scoredPointID(r.Id),
			Score:    r.Score,
			Metadata: make(map[string]string),
		}
		for k, v := range r.Payload {
			m.Metadata[k] = v.GetStringValue()
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// List returns all collection names sorted lexicographically.
func (s *QdrantStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("qdrant: list collections failed: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Ping calls the Qdrant HealthCheck RPC. Used by readiness probes.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant: health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// pointID converts a record id into a Qdrant point id. Positional ids
// ("0".."N-1") map to numeric ids; anything else is treated as a UUID.
func pointID(id string) *qdrant.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	return qdrant.NewIDUUID(id)
}

// scoredPointID converts a Qdrant point id back to its string form.
func scoredPointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}
