package ai

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ServiceContext bundles the model dependencies used during indexing.
// It is built once per run and not mutated afterwards.
type ServiceContext struct {
	// Embedder produces node vectors. Required.
	Embedder Embedder

	// EmbeddingModel names the embedding model, recorded in the index metadata.
	EmbeddingModel string

	// Dimensions is the length every embedding must have.
	Dimensions int

	// LLM is the optional language model. Nil when not configured.
	LLM llms.Model

	// Callbacks receives trace events. Nil when tracing is disabled.
	Callbacks callbacks.Handler

	closers []func() error
}

// NewServiceContext assembles a ServiceContext. llm and handler may be nil.
func NewServiceContext(embedder Embedder, model string, dims int, llm llms.Model, handler callbacks.Handler) *ServiceContext {
	return &ServiceContext{
		Embedder:       embedder,
		EmbeddingModel: model,
		Dimensions:     dims,
		LLM:            llm,
		Callbacks:      handler,
	}
}

// OnClose registers fn to run when the context is closed.
func (s *ServiceContext) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Trace forwards text to the callbacks handler if one is configured.
func (s *ServiceContext) Trace(ctx context.Context, text string) {
	if s.Callbacks != nil {
		s.Callbacks.HandleText(ctx, text)
	}
}

// Close releases resources held by the context's services.
func (s *ServiceContext) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
