package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/vecload/core"
)

// Context bundles the stores used by one indexing run.
// It owns the vector store's connection; Close releases both stores.
type Context struct {
	VectorStore VectorStore
	IndexStore  IndexStore
	logger      *slog.Logger
}

// NewContext creates a storage context. Both stores are required.
func NewContext(vectorStore VectorStore, indexStore IndexStore) (*Context, error) {
	if vectorStore == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, ErrVectorStoreRequired)
	}
	if indexStore == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, ErrIndexStoreRequired)
	}
	return &Context{
		VectorStore: vectorStore,
		IndexStore:  indexStore,
		logger:      slog.Default().With("component", "storage-context"),
	}, nil
}

// Persist writes the index metadata snapshot to the index store.
// Failures wrap core.ErrWrite.
func (c *Context) Persist(ctx context.Context, record *IndexRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("%w: index record has no id", core.ErrWrite)
	}
	if err := c.IndexStore.SaveIndex(ctx, record); err != nil {
		c.logger.Error("failed to persist index", "index", record.ID, "err", err)
		return fmt.Errorf("%w: %w", core.ErrWrite, err)
	}
	c.logger.Info("persisted index",
		"index", record.ID,
		"collection", record.Collection,
		"nodes", len(record.NodeIDs))
	return nil
}

// Close closes both stores and joins their errors.
func (c *Context) Close() error {
	return errors.Join(c.VectorStore.Close(), c.IndexStore.Close())
}
