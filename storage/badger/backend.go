package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/vecload/storage"
)

const (
	defaultSequenceBandwidth = 100
)

// Backend is the BadgerDB database behind an IndexStore.
// Each method runs in its own transaction and returns
// storage.ErrStorageClosed once the database has been closed.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// Entry is one key/value pair written by Put.
type Entry struct {
	Key   []byte
	Value []byte
}

type backendOptions struct {
	inMemory   bool
	syncWrites bool
	logger     *slog.Logger
}

// BackendOption configures OpenBackend.
type BackendOption func(*backendOptions)

// InMemory keeps the database in memory. The directory argument is ignored.
func InMemory() BackendOption {
	return func(o *backendOptions) {
		o.inMemory = true
	}
}

// WithSyncWrites makes every Put wait for the value log to reach disk.
func WithSyncWrites(enabled bool) BackendOption {
	return func(o *backendOptions) {
		o.syncWrites = enabled
	}
}

// WithBackendLogger routes BadgerDB's own log output to logger.
// Default is slog.Default().
func WithBackendLogger(logger *slog.Logger) BackendOption {
	return func(o *backendOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// slogAdapter feeds badger.Logger output into slog.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(msg string, items ...any) {
	a.logger.Error(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Warningf(msg string, items ...any) {
	a.logger.Warn(fmt.Sprintf(msg, items...))
}

// Badger's info output is routine compaction chatter; it goes to debug.
func (a *slogAdapter) Infof(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Debugf(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens the database in dir, creating the directory if needed.
func OpenBackend(dir string, opts ...BackendOption) (*Backend, error) {
	o := backendOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var bopts badger.Options
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
		bopts = badger.DefaultOptions(dir).WithSyncWrites(o.syncWrites)
	}

	logger := o.logger.With("component", "badger")
	bopts = bopts.
		WithLogger(&slogAdapter{logger: logger}).
		WithCompression(options.None)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened index database", "dir", dir, "in_memory", o.inMemory)

	return &Backend{
		db:     db,
		logger: logger,
	}, nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// Put writes all entries in a single transaction. Either every entry
// is stored or none is.
func (b *Backend) Put(entries ...Entry) error {
	if b.IsClosed() {
		return storage.ErrStorageClosed
	}
	return b.db.Update(func(tx *badger.Txn) error {
		for _, e := range entries {
			if err := tx.Set(e.Key, e.Value); err != nil {
				return fmt.Errorf("set %q: %w", e.Key, err)
			}
		}
		return nil
	})
}

// Get returns a copy of the value stored under key.
// A missing key yields storage.ErrNotFound.
func (b *Backend) Get(key []byte) ([]byte, error) {
	if b.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var val []byte
	err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	return val, err
}

// Scan calls fn for every key with the given prefix, in key order.
// Scanning stops at the first error from fn or ctx.
func (b *Backend) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	if b.IsClosed() {
		return storage.ErrStorageClosed
	}
	return b.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// Sequence returns the named monotonic counter. The caller must Release it.
func (b *Backend) Sequence(name string) (*badger.Sequence, error) {
	if b.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return b.db.GetSequence([]byte(name), defaultSequenceBandwidth)
}
