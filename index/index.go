// Package index embeds nodes and writes them to a vector store.
//
// Indexer.Build runs batches strictly in order and stops at the first
// failure. The returned Index carries the metadata that
// storage.Context.Persist writes.
package index

import (
	"slices"
	"time"

	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/storage"
)

// Metadata is the snapshot of an Index written by storage.Context.Persist.
type Metadata = storage.IndexRecord

// Index is the handle returned by Indexer.Build.
type Index struct {
	ID             string
	Collection     string
	Dimensions     int
	EmbeddingModel string
	NodeIDs        []core.ID
	DocumentIDs    []core.ID
	CreatedAt      time.Time
}

// Metadata returns the persistable snapshot of the index.
func (ix *Index) Metadata() *Metadata {
	return &Metadata{
		ID:             ix.ID,
		Collection:     ix.Collection,
		Dimensions:     ix.Dimensions,
		EmbeddingModel: ix.EmbeddingModel,
		NodeIDs:        slices.Clone(ix.NodeIDs),
		DocumentIDs:    slices.Clone(ix.DocumentIDs),
		CreatedAt:      ix.CreatedAt,
	}
}

// NodeCount returns the number of nodes written.
func (ix *Index) NodeCount() int {
	return len(ix.NodeIDs)
}
