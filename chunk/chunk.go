// Package chunk splits documents into nodes.
//
// Two policies are provided. The JSON policy walks the document's JSON tree
// and emits one node per top-level array element (or one node for any other
// root value), rendering each as "key path... value" lines. The text policy
// splits raw text into overlapping chunks of bounded size.
package chunk

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/vecload/core"
)

// Policy names a chunking strategy.
type Policy string

const (
	// PolicyJSON walks the JSON structure of each document.
	PolicyJSON Policy = "json"
	// PolicyText splits by size with recursive separators.
	PolicyText Policy = "text"
)

// Metadata keys set on every node.
const (
	MetaSource   = "source"
	MetaJSONPath = "json_path"
	MetaChunk    = "chunk"
)

const (
	DefaultChunkSize    = 1024
	DefaultChunkOverlap = 20
)

// Chunker converts documents into an ordered flat list of nodes.
type Chunker interface {
	Chunk(ctx context.Context, docs []*core.Document) ([]*core.Node, error)
}

type options struct {
	chunkSize    int
	chunkOverlap int
	progress     io.Writer
}

// Option configures a Chunker.
type Option func(*options)

// WithChunkSize sets the maximum chunk length for the text policy.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithChunkOverlap sets the overlap between adjacent text chunks.
func WithChunkOverlap(n int) Option {
	return func(o *options) {
		o.chunkOverlap = n
	}
}

// WithProgress reports chunked documents to w.
func WithProgress(w io.Writer) Option {
	return func(o *options) {
		o.progress = w
	}
}

// New returns the chunker for policy. An empty policy selects PolicyJSON.
// Unknown policies and inconsistent sizes wrap core.ErrConfig.
func New(policy Policy, opts ...Option) (Chunker, error) {
	o := options{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch policy {
	case PolicyJSON, "":
		return &jsonChunker{
			progress: o.progress,
			logger:   slog.Default().With("component", "chunker", "policy", PolicyJSON),
		}, nil
	case PolicyText:
		if o.chunkSize <= 0 {
			return nil, fmt.Errorf("%w: chunk size must be greater than 0, got %d", core.ErrConfig, o.chunkSize)
		}
		if o.chunkOverlap < 0 || o.chunkOverlap >= o.chunkSize {
			return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", core.ErrConfig, o.chunkSize, o.chunkOverlap)
		}
		return newTextChunker(o), nil
	default:
		return nil, fmt.Errorf("%w: unknown chunking policy %q", core.ErrConfig, policy)
	}
}
