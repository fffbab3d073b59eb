// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder and llms.Model and
// helpers that wrap them in an ai.ServiceContext for use in unit tests. The
// mocks allow tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	svc := mock.NewServiceContext()
//	vectors, err := svc.Embedder.EmbedTexts(ctx, []string{"test"})
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//	svc = mock.ServiceContextWith(embedder, nil)
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockLLM: Returns a fixed response and records prompts
package mock
