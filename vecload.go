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

// Package vecload builds a vector index from source documents.
//
// Run composes the stages in order: load, chunk, build the service and
// storage contexts, index, persist. Each stage finishes before the next one
// starts and the first error aborts the run.
package vecload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/vecload/ai"
	"github.com/poiesic/vecload/ai/openai"
	"github.com/poiesic/vecload/chunk"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/index"
	"github.com/poiesic/vecload/loader"
	"github.com/poiesic/vecload/storage"
	"github.com/poiesic/vecload/storage/badger"
	"github.com/poiesic/vecload/storage/pgvector"
)

const (
	// ConnectionStringEnv names the environment variable holding the Postgres URL.
	ConnectionStringEnv = "CONNECTION_STRING"

	DefaultInput      = "./data/events.json"
	DefaultPersistDir = "./storage"
)

// Config holds everything one run needs.
type Config struct {
	// ConnectionString is the Postgres URL of the vector store. Required.
	ConnectionString string

	// Inputs are the source files, loaded in order.
	Inputs []string

	// Chunker selects the chunking policy. ChunkSize and ChunkOverlap apply
	// to the text policy.
	Chunker      chunk.Policy
	ChunkSize    int
	ChunkOverlap int

	// LoadWorkers is the number of files read concurrently.
	LoadWorkers int

	// AI configures the embedding model and optional language model.
	AI *ai.Config

	// Table is the logical vector table name.
	Table string

	// PreDelete drops the vector table before writing.
	PreDelete bool

	// PersistDir is where the index metadata snapshot is written.
	PersistDir string

	// Normalize scales vectors to unit length before writing.
	Normalize bool

	// Trace logs model callback events at debug level.
	Trace bool

	// Progress receives stage progress. Nil disables it.
	Progress io.Writer
}

// DefaultConfig returns a Config with defaults and the connection string
// taken from the environment.
func DefaultConfig() *Config {
	return &Config{
		ConnectionString: os.Getenv(ConnectionStringEnv),
		Inputs:           []string{DefaultInput},
		Chunker:          chunk.PolicyJSON,
		ChunkSize:        chunk.DefaultChunkSize,
		ChunkOverlap:     chunk.DefaultChunkOverlap,
		LoadWorkers:      1,
		AI:               ai.DefaultConfig(),
		Table:            pgvector.DefaultTable,
		PersistDir:       DefaultPersistDir,
	}
}

// ServiceContextFactory builds the model services for a run.
type ServiceContextFactory func(cfg *ai.Config, trace bool) (*ai.ServiceContext, error)

// VectorStoreOpener connects to the vector store.
type VectorStoreOpener func(ctx context.Context, cfg *pgvector.Config) (storage.VectorStore, error)

// IndexStoreOpener opens the local index metadata store.
type IndexStoreOpener func(dir string) (storage.IndexStore, error)

type runOptions struct {
	newServiceContext ServiceContextFactory
	openVectorStore   VectorStoreOpener
	openIndexStore    IndexStoreOpener
	logger            *slog.Logger
}

// RunOption overrides how Run builds its collaborators.
type RunOption func(*runOptions)

// WithServiceContextFactory replaces the OpenAI-compatible service context.
func WithServiceContextFactory(f ServiceContextFactory) RunOption {
	return func(o *runOptions) {
		o.newServiceContext = f
	}
}

// WithVectorStoreOpener replaces the pgvector store.
func WithVectorStoreOpener(f VectorStoreOpener) RunOption {
	return func(o *runOptions) {
		o.openVectorStore = f
	}
}

// WithIndexStoreOpener replaces the BadgerDB index store.
func WithIndexStoreOpener(f IndexStoreOpener) RunOption {
	return func(o *runOptions) {
		o.openIndexStore = f
	}
}

// WithLogger sets the logger Run and the indexer log through.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) RunOption {
	return func(o *runOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func defaultServiceContext(cfg *ai.Config, trace bool) (*ai.ServiceContext, error) {
	var opts []openai.Option
	if trace {
		opts = append(opts, openai.WithTracing(nil))
	}
	return openai.NewServiceContext(cfg, opts...)
}

func defaultVectorStore(ctx context.Context, cfg *pgvector.Config) (storage.VectorStore, error) {
	return pgvector.Open(ctx, cfg)
}

func defaultIndexStore(dir string) (storage.IndexStore, error) {
	return badger.OpenIndexStore(dir)
}

// Run executes one indexing run and returns the built index.
// Returned errors wrap one of the core error kinds, except that a
// canceled or expired ctx is reported as ctx.Err() unwrapped.
func Run(ctx context.Context, cfg *Config, opts ...RunOption) (*index.Index, error) {
	o := runOptions{
		newServiceContext: defaultServiceContext,
		openVectorStore:   defaultVectorStore,
		openIndexStore:    defaultIndexStore,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "vecload")
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", core.ErrConfig)
	}
	aiCfg := cfg.AI
	if aiCfg == nil {
		aiCfg = ai.DefaultConfig()
	}

	// The connection string is checked before any file is read.
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("%w: %s is not set", core.ErrConfig, ConnectionStringEnv)
	}
	pgCfg, err := pgvector.ParseConnectionString(cfg.ConnectionString,
		pgvector.WithTable(cfg.Table),
		pgvector.WithDimensions(aiCfg.Dimensions),
		pgvector.WithPreDelete(cfg.PreDelete),
	)
	if err != nil {
		return nil, err
	}

	chunker, err := chunk.New(cfg.Chunker,
		chunk.WithChunkSize(cfg.ChunkSize),
		chunk.WithChunkOverlap(cfg.ChunkOverlap),
		chunk.WithProgress(cfg.Progress),
	)
	if err != nil {
		return nil, err
	}

	docs, err := load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	nodes, err := chunker.Chunk(ctx, docs)
	if err != nil {
		return nil, err
	}

	svc, err := o.newServiceContext(aiCfg, cfg.Trace)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("error closing service context", "err", err)
		}
	}()

	sc, err := openStorage(ctx, o, pgCfg, cfg.PersistDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sc.Close(); err != nil {
			logger.Warn("error closing storage", "err", err)
		}
	}()

	indexOpts := []index.Option{
		index.WithNormalize(cfg.Normalize),
		index.WithLogger(o.logger),
	}
	if aiCfg.BatchSize > 0 {
		indexOpts = append(indexOpts, index.WithBatchSize(aiCfg.BatchSize))
	}
	if cfg.Progress != nil {
		indexOpts = append(indexOpts, index.WithProgress(cfg.Progress, 1))
	}
	indexer, err := index.NewIndexer(svc, sc.VectorStore, indexOpts...)
	if err != nil {
		return nil, err
	}
	idx, err := indexer.Build(ctx, nodes)
	if err != nil {
		return nil, err
	}

	if err := sc.Persist(ctx, idx.Metadata()); err != nil {
		return nil, err
	}

	logger.Info("run complete",
		"index", idx.ID,
		"documents", len(docs),
		"nodes", idx.NodeCount(),
		"collection", idx.Collection)
	return idx, nil
}

func load(ctx context.Context, cfg *Config) ([]*core.Document, error) {
	opts := []loader.Option{loader.WithWorkers(max(cfg.LoadWorkers, 1))}
	if cfg.Chunker == chunk.PolicyJSON || cfg.Chunker == "" {
		opts = append(opts, loader.WithFormat(loader.FormatJSON))
	}
	if cfg.Progress != nil {
		opts = append(opts, loader.WithProgress(cfg.Progress))
	}
	l, err := loader.New(opts...)
	if err != nil {
		return nil, err
	}
	defer l.Release()
	return l.Load(ctx, cfg.Inputs...)
}

func openStorage(ctx context.Context, o runOptions, pgCfg *pgvector.Config, persistDir string) (*storage.Context, error) {
	vs, err := o.openVectorStore(ctx, pgCfg)
	if err != nil {
		return nil, err
	}
	is, err := o.openIndexStore(persistDir)
	if err != nil {
		vs.Close()
		return nil, fmt.Errorf("%w: open index store: %w", core.ErrConfig, err)
	}
	sc, err := storage.NewContext(vs, is)
	if err != nil {
		return nil, errors.Join(err, vs.Close(), is.Close())
	}
	return sc, nil
}
