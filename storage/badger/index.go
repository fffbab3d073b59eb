// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/vecload/storage"
)

// IndexStore implements storage.IndexStore for BadgerDB.
type IndexStore struct {
	backend    *Backend
	seq        *badger.Sequence
	ownBackend bool
}

var _ storage.IndexStore = (*IndexStore)(nil)

// NewIndexStore creates an IndexStore on an open backend.
// The caller keeps ownership of the backend.
func NewIndexStore(backend *Backend) (*IndexStore, error) {
	seq, err := backend.Sequence(indexSeq)
	if err != nil {
		return nil, err
	}
	return &IndexStore{
		backend: backend,
		seq:     seq,
	}, nil
}

// OpenIndexStore opens (or creates) the index store in dir.
// Close also closes the underlying database.
func OpenIndexStore(dir string) (*IndexStore, error) {
	backend, err := OpenBackend(dir, WithSyncWrites(true))
	if err != nil {
		return nil, err
	}
	store, err := NewIndexStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	store.ownBackend = true
	return store, nil
}

// Close releases the sequence and, if the store opened it, the database.
func (s *IndexStore) Close() error {
	err := s.seq.Release()
	if s.ownBackend {
		err = errors.Join(err, s.backend.Close())
	}
	return err
}

// SaveIndex stores the record under its ID and marks it as the latest.
// The record, its history entry and the latest pointer are written together.
func (s *IndexStore) SaveIndex(ctx context.Context, record *storage.IndexRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	next, err := s.seq.Next()
	if err != nil {
		return err
	}
	id := []byte(record.ID)
	return s.backend.Put(
		Entry{Key: makeIndexRecordKey(record.ID), Value: storage.MarshalIndexRecord(record)},
		Entry{Key: makeIndexHistoryKey(next), Value: id},
		Entry{Key: []byte(indexLatestKey), Value: id},
	)
}

// LoadIndex retrieves a record by ID.
func (s *IndexStore) LoadIndex(ctx context.Context, id string) (*storage.IndexRecord, error) {
	val, err := s.backend.Get(makeIndexRecordKey(id))
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalIndexRecord(val)
}

// LatestIndex retrieves the most recently saved record.
func (s *IndexStore) LatestIndex(ctx context.Context) (*storage.IndexRecord, error) {
	id, err := s.backend.Get([]byte(indexLatestKey))
	if err != nil {
		return nil, err
	}
	return s.LoadIndex(ctx, string(id))
}

// ListIndexes returns the IDs of all saved records, oldest first.
func (s *IndexStore) ListIndexes(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.backend.Scan(ctx, []byte(indexHistoryPrefix+":"), func(_, value []byte) error {
		ids = append(ids, string(value))
		return nil
	})
	return ids, err
}
