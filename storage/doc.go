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


// Package storage provides the storage abstraction layer for vecload.
//
// This package defines the store interfaces that decouple storage
// implementation from the indexing pipeline. Different backends can be used
// interchangeably.
//
// # Architecture
//
//   - VectorStore: receives embedded nodes (storage/pgvector, storage/memory)
//   - IndexStore: persists index metadata snapshots (storage/badger)
//   - Context: bundles both stores for one run and owns their lifetime
//   - IndexRecord: the snapshot written by Context.Persist, serialized with mus-go
//
// # Usage
//
//	cfg, err := pgvector.ParseConnectionString(os.Getenv("CONNECTION_STRING"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vs, err := pgvector.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	is, err := badger.OpenIndexStore("./storage")
//	if err != nil {
//	    vs.Close()
//	    log.Fatal(err)
//	}
//	sc, err := storage.NewContext(vs, is)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sc.Close()
//
// # Thread Safety
//
// All store implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation
// and timeout support.
package storage
