package storage

import (
	"context"

	"github.com/poiesic/vecload/core"
)

// VectorStore receives embedded nodes.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// Add writes the nodes and their vectors. Every node must carry a vector
	// of length Dimensions(). Returns the stored node IDs in input order.
	Add(ctx context.Context, nodes []*core.Node) ([]core.ID, error)

	// Count returns the number of rows currently held by the store.
	Count(ctx context.Context) (int, error)

	// Collection names the table or collection the store writes to.
	Collection() string

	// Dimensions returns the vector length the store was created with.
	Dimensions() int

	// Close releases the store's connection.
	Close() error
}

// IndexStore persists index metadata snapshots.
type IndexStore interface {
	// SaveIndex stores the record under its ID and marks it as the latest.
	SaveIndex(ctx context.Context, record *IndexRecord) error

	// LoadIndex retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	LoadIndex(ctx context.Context, id string) (*IndexRecord, error)

	// LatestIndex retrieves the most recently saved record.
	// Returns ErrNotFound if nothing has been saved.
	LatestIndex(ctx context.Context) (*IndexRecord, error)

	// Close closes the store and releases resources.
	Close() error
}
