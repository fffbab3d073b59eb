package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/vecload/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := OpenBackend("", InMemory())
	require.NoError(t, err)
	t.Cleanup(func() {
		if !backend.IsClosed() {
			backend.Close()
		}
	})
	return backend
}

func TestOpenBackend_InMemory(t *testing.T) {
	backend := memoryBackend(t)
	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "storage")
	backend, err := OpenBackend(dir, WithSyncWrites(true))
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := OpenBackend(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestBackend_Close(t *testing.T) {
	backend := memoryBackend(t)
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	assert.ErrorIs(t, backend.Put(Entry{Key: []byte("k"), Value: []byte("v")}), storage.ErrStorageClosed)
	_, err := backend.Get([]byte("k"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = backend.Sequence("seq")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestBackend_PutAndGet(t *testing.T) {
	backend := memoryBackend(t)

	require.NoError(t, backend.Put(
		Entry{Key: []byte("a"), Value: []byte("1")},
		Entry{Key: []byte("b"), Value: []byte("2")},
	))

	val, err := backend.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(val))
	val, err = backend.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(val))

	_, err = backend.Get([]byte("missing"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackend_PutIsAtomic(t *testing.T) {
	backend := memoryBackend(t)

	// an empty key fails the transaction after "kept" was staged
	err := backend.Put(
		Entry{Key: []byte("kept"), Value: []byte("1")},
		Entry{Key: nil, Value: []byte("2")},
	)
	require.Error(t, err)

	_, err = backend.Get([]byte("kept"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackend_Scan(t *testing.T) {
	backend := memoryBackend(t)
	require.NoError(t, backend.Put(
		Entry{Key: []byte("p:2"), Value: []byte("two")},
		Entry{Key: []byte("p:1"), Value: []byte("one")},
		Entry{Key: []byte("q:1"), Value: []byte("other")},
	))

	var keys, values []string
	err := backend.Scan(context.Background(), []byte("p:"), func(key, value []byte) error {
		keys = append(keys, string(key))
		values = append(values, string(value))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p:1", "p:2"}, keys)
	assert.Equal(t, []string{"one", "two"}, values)

	t.Run("callback error stops the scan", func(t *testing.T) {
		calls := 0
		err := backend.Scan(context.Background(), []byte("p:"), func(_, _ []byte) error {
			calls++
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := backend.Scan(ctx, []byte("p:"), func(_, _ []byte) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBackend_Sequence(t *testing.T) {
	backend := memoryBackend(t)

	seq, err := backend.Sequence("test_sequence")
	require.NoError(t, err)
	require.NotNil(t, seq)
	defer seq.Release()

	id1, err := seq.Next()
	require.NoError(t, err)

	id2, err := seq.Next()
	require.NoError(t, err)

	assert.Greater(t, id2, id1)
}
