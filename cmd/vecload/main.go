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

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/vecload"
	"github.com/poiesic/vecload/ai"
	"github.com/poiesic/vecload/chunk"
	"github.com/poiesic/vecload/storage"
	"github.com/poiesic/vecload/storage/badger"
	"github.com/poiesic/vecload/storage/pgvector"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("vecload failed", "err", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	defaults := ai.DefaultConfig()

	return &cli.App{
		Name:  "vecload",
		Usage: "Load documents, embed them and write the vectors to Postgres",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Index input files into the vector store",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Input file, may be repeated",
						Value:   cli.NewStringSlice(vecload.DefaultInput),
					},
					&cli.StringFlag{
						Name:  "chunker",
						Usage: "Chunking policy (json, text)",
						Value: string(chunk.PolicyJSON),
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum chunk length for the text chunker",
						Value: chunk.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Overlap between text chunks",
						Value: chunk.DefaultChunkOverlap,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: defaults.EmbeddingHost,
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: defaults.EmbeddingModel,
					},
					&cli.StringFlag{
						Name:    "api-token",
						Usage:   "API token for the embedding service",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "dimensions",
						Usage: "Embedding dimensions of the vector column",
						Value: defaults.Dimensions,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of nodes embedded and written together",
						Value: defaults.BatchSize,
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "Vector table name (stored with a data_ prefix)",
						Value: pgvector.DefaultTable,
					},
					&cli.StringFlag{
						Name:  "persist-dir",
						Usage: "Directory for index metadata",
						Value: vecload.DefaultPersistDir,
					},
					&cli.StringFlag{
						Name:  "llm-model",
						Usage: "Language model used to title documents (disabled when empty)",
					},
					&cli.StringFlag{
						Name:  "llm-host",
						Usage: "Language model host URL (defaults to embedding-host)",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log model calls at debug level",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Show progress on stderr",
					},
					&cli.IntFlag{
						Name:  "load-workers",
						Usage: "Number of files read concurrently",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "pre-delete",
						Usage: "Drop the vector table before writing",
					},
					&cli.BoolFlag{
						Name:  "normalize",
						Usage: "Scale vectors to unit length before writing",
					},
				},
			},
			{
				Name:   "show",
				Usage:  "Print the most recently persisted index",
				Action: showCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "persist-dir",
						Usage: "Directory for index metadata",
						Value: vecload.DefaultPersistDir,
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "List every persisted index ID",
					},
				},
			},
		},
	}
}

func indexCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := configFromFlags(c)

	fmt.Fprintf(c.App.ErrWriter, "Inputs: %s\n", strings.Join(cfg.Inputs, ", "))
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	start := time.Now()
	idx, err := vecload.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Indexed %d nodes from %d documents into %s in %s\n",
		idx.NodeCount(), len(idx.DocumentIDs), idx.Collection, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(c.App.Writer, "Index ID: %s\n", idx.ID)
	return nil
}

func configFromFlags(c *cli.Context) *vecload.Config {
	cfg := vecload.DefaultConfig()
	cfg.Inputs = c.StringSlice("input")
	cfg.Chunker = chunk.Policy(c.String("chunker"))
	cfg.ChunkSize = c.Int("chunk-size")
	cfg.ChunkOverlap = c.Int("chunk-overlap")
	cfg.LoadWorkers = c.Int("load-workers")
	cfg.Table = c.String("table")
	cfg.PreDelete = c.Bool("pre-delete")
	cfg.PersistDir = c.String("persist-dir")
	cfg.Normalize = c.Bool("normalize")
	cfg.Trace = c.Bool("trace")
	if c.Bool("progress") {
		cfg.Progress = c.App.ErrWriter
	}
	cfg.AI = ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
		ai.WithDimensions(c.Int("dimensions")),
		ai.WithBatchSize(c.Int("batch-size")),
		ai.WithLLMHost(c.String("llm-host")),
		ai.WithLLMModel(c.String("llm-model")),
	)
	return cfg
}

func showCommand(c *cli.Context) error {
	store, err := badger.OpenIndexStore(c.String("persist-dir"))
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer store.Close()

	if c.Bool("all") {
		ids, err := store.ListIndexes(c.Context)
		if err != nil {
			return fmt.Errorf("failed to list indexes: %w", err)
		}
		for _, id := range ids {
			fmt.Fprintln(c.App.Writer, id)
		}
		return nil
	}

	record, err := store.LatestIndex(c.Context)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no index persisted in %s", c.String("persist-dir"))
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}
	printRecord(c.App.Writer, record)
	return nil
}

func printRecord(w io.Writer, r *storage.IndexRecord) {
	fmt.Fprintf(w, "Index ID:        %s\n", r.ID)
	fmt.Fprintf(w, "Collection:      %s\n", r.Collection)
	fmt.Fprintf(w, "Dimensions:      %d\n", r.Dimensions)
	fmt.Fprintf(w, "Embedding model: %s\n", r.EmbeddingModel)
	fmt.Fprintf(w, "Documents:       %d\n", len(r.DocumentIDs))
	fmt.Fprintf(w, "Nodes:           %d\n", len(r.NodeIDs))
	fmt.Fprintf(w, "Created:         %s\n", r.CreatedAt.Format(time.RFC3339))
}

func setup(c *cli.Context) error {
	if err := loadEnv(c.String("env-file")); err != nil {
		return err
	}
	return setupLogger(c)
}

// loadEnv reads path into the environment. A missing file is not an error
// and variables already set are kept.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
