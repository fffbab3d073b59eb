package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/storage"
	"github.com/poiesic/vecload/storage/badger"
	"github.com/poiesic/vecload/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingIndexStore struct {
	storage.IndexStore
	err error
}

func (f *failingIndexStore) SaveIndex(ctx context.Context, record *storage.IndexRecord) error {
	return f.err
}

func TestNewContext_RequiresStores(t *testing.T) {
	is, err := badger.NewMemoryIndexStore()
	require.NoError(t, err)
	defer is.Close()

	_, err = storage.NewContext(nil, is)
	assert.ErrorIs(t, err, core.ErrConfig)
	assert.ErrorIs(t, err, storage.ErrVectorStoreRequired)

	_, err = storage.NewContext(memory.NewStore("events", 4), nil)
	assert.ErrorIs(t, err, core.ErrConfig)
	assert.ErrorIs(t, err, storage.ErrIndexStoreRequired)
}

func TestContext_Persist(t *testing.T) {
	ctx := context.Background()
	is, err := badger.NewMemoryIndexStore()
	require.NoError(t, err)
	vs := memory.NewStore("events", 4)

	sc, err := storage.NewContext(vs, is)
	require.NoError(t, err)

	record := &storage.IndexRecord{
		ID:             "idx-1",
		Collection:     "events",
		Dimensions:     4,
		EmbeddingModel: "mock",
		NodeIDs:        []core.ID{1, 2},
		DocumentIDs:    []core.ID{3},
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, sc.Persist(ctx, record))

	latest, err := sc.IndexStore.LatestIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, record, latest)

	require.NoError(t, sc.Close())
	assert.True(t, vs.Closed())
}

func TestContext_PersistErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing id", func(t *testing.T) {
		sc, err := storage.NewContext(memory.NewStore("events", 4), &failingIndexStore{})
		require.NoError(t, err)

		err = sc.Persist(ctx, &storage.IndexRecord{})
		assert.ErrorIs(t, err, core.ErrWrite)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("disk full")
		sc, err := storage.NewContext(memory.NewStore("events", 4), &failingIndexStore{err: boom})
		require.NoError(t, err)

		err = sc.Persist(ctx, &storage.IndexRecord{ID: "x"})
		assert.ErrorIs(t, err, core.ErrWrite)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "disk full")
	})
}
