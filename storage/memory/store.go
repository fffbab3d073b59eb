// Package memory provides an in-memory storage.VectorStore.
//
// The store enforces its dimensionality the way a vector(n) column does, which
// makes it a faithful stand-in for storage/pgvector in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/storage"
)

// Row is one stored node.
type Row struct {
	NodeID   core.ID
	Text     string
	Metadata map[string]string
	Vector   []float32
}

// Store is a thread-safe in-memory vector store.
type Store struct {
	collection string
	dims       int

	mu     sync.RWMutex
	rows   []Row
	closed bool

	// AddFunc, when set, replaces Add's behavior.
	AddFunc func(ctx context.Context, nodes []*core.Node) ([]core.ID, error)
}

var _ storage.VectorStore = (*Store)(nil)

// NewStore creates an empty store for collection with the given dimensionality.
func NewStore(collection string, dims int) *Store {
	return &Store{collection: collection, dims: dims}
}

// Add appends the nodes. The whole batch is rejected if any vector has the
// wrong length.
func (s *Store) Add(ctx context.Context, nodes []*core.Node) ([]core.ID, error) {
	if s.AddFunc != nil {
		return s.AddFunc(ctx, nodes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	for _, n := range nodes {
		if err := core.ValidateVector(n.Vector, s.dims); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.Id, err)
		}
	}

	ids := make([]core.ID, len(nodes))
	for i, n := range nodes {
		s.rows = append(s.rows, Row{
			NodeID:   n.Id,
			Text:     n.Text,
			Metadata: n.Metadata,
			Vector:   slices.Clone(n.Vector),
		})
		ids[i] = n.Id
	}
	return ids, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

// Rows returns a copy of the stored rows in insertion order.
func (s *Store) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows)
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Dimensions returns the store's vector length.
func (s *Store) Dimensions() int {
	return s.dims
}

// Close marks the store closed. Rows remain readable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
