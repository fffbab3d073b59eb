// Package pgvector implements storage.VectorStore on Postgres with the
// pgvector extension.
//
// Rows land in data_<table> with the column layout other pgvector-backed
// retrieval stacks read: id, text, metadata_, node_id and embedding.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/storage"
)

var columns = []string{"text", "metadata_", "node_id", "embedding"}

// Store writes embedded nodes to a pgvector table.
type Store struct {
	pool   *pgxpool.Pool
	cfg    Config
	table  pgx.Identifier
	logger *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// Open connects to the database, ensures the vector extension and the table
// exist, and returns a store bound to a connection pool.
//
// Unreachable servers and rejected credentials wrap core.ErrConnection. An
// existing table whose embedding column has a different length wraps
// core.ErrConfig.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "pgvector", "table", cfg.TableName())

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	s := &Store{
		cfg:    *cfg,
		table:  pgx.Identifier{cfg.TableName()},
		logger: logger,
	}

	// The vector type must exist before pooled connections can register it.
	if err := s.bootstrap(ctx, poolCfg.ConnConfig.Copy()); err != nil {
		return nil, err
	}

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConnection, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrConnection, err)
	}
	s.pool = pool

	logger.Info("connected to vector store", "dsn", cfg.Redacted(), "dimensions", cfg.Dimensions)
	return s, nil
}

func (s *Store) bootstrap(ctx context.Context, connCfg *pgx.ConnConfig) error {
	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrConnection, err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("%w: enable vector extension: %w", core.ErrConfig, err)
	}

	table := s.table.Sanitize()
	if s.cfg.PreDeleteTable {
		s.logger.Warn("dropping existing table")
		if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("%w: drop table: %w", core.ErrWrite, err)
		}
	}

	existing, err := existingDimensions(ctx, conn, s.cfg.TableName())
	if err != nil {
		return fmt.Errorf("%w: inspect table: %w", core.ErrConnection, err)
	}
	if existing > 0 && existing != s.cfg.Dimensions {
		return fmt.Errorf("%w: table %s has vector(%d), configured dimensions are %d",
			core.ErrConfig, s.cfg.TableName(), existing, s.cfg.Dimensions)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	text VARCHAR NOT NULL,
	metadata_ JSONB,
	node_id VARCHAR,
	embedding VECTOR(%d)
)`, table, s.cfg.Dimensions)
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("%w: create table: %w", core.ErrWrite, err)
	}
	return nil
}

// existingDimensions returns the typmod of the embedding column, which for
// the vector type is its length. Zero means the table does not exist.
func existingDimensions(ctx context.Context, conn *pgx.Conn, table string) (int, error) {
	var dims int32
	err := conn.QueryRow(ctx,
		`SELECT atttypmod FROM pg_attribute
		 WHERE attrelid = to_regclass($1) AND attname = 'embedding' AND NOT attisdropped`,
		table).Scan(&dims)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(dims), nil
}

// Add copies the nodes into the table in one COPY statement. Vectors are
// checked against the configured dimensions before anything is sent.
func (s *Store) Add(ctx context.Context, nodes []*core.Node) ([]core.ID, error) {
	for _, n := range nodes {
		if err := core.ValidateVector(n.Vector, s.cfg.Dimensions); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.Id, err)
		}
	}

	rows := pgx.CopyFromSlice(len(nodes), func(i int) ([]any, error) {
		n := nodes[i]
		return []any{n.Text, rowMetadata(n), n.Id.String(), pgvector.NewVector(n.Vector)}, nil
	})
	copied, err := s.pool.CopyFrom(ctx, s.table, columns, rows)
	if err != nil {
		s.logger.Error("copy failed", "nodes", len(nodes), "err", err)
		return nil, err
	}
	if int(copied) != len(nodes) {
		return nil, fmt.Errorf("copied %d of %d rows", copied, len(nodes))
	}

	ids := make([]core.ID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.Id
	}
	s.logger.Debug("copied nodes", "count", copied)
	return ids, nil
}

// rowMetadata is the metadata_ column value: the node's metadata plus its
// document reference and position.
func rowMetadata(n *core.Node) map[string]string {
	md := make(map[string]string, len(n.Metadata)+3)
	maps.Copy(md, n.Metadata)
	md["node_id"] = n.Id.String()
	md["doc_id"] = n.DocumentId.String()
	md["position"] = strconv.Itoa(n.Position)
	return md
}

// Count returns the number of rows in the table.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+s.table.Sanitize()).Scan(&count)
	return count, err
}

// Collection returns the physical table name.
func (s *Store) Collection() string {
	return s.cfg.TableName()
}

// Dimensions returns the embedding column length.
func (s *Store) Dimensions() int {
	return s.cfg.Dimensions
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
