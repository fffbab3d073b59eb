package index

import "errors"

var (
	// ErrServiceContextRequired is returned when a service context is not provided.
	ErrServiceContextRequired = errors.New("service context required")

	// ErrEmbedderRequired is returned when the service context has no embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")
)
