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


// Package ai provides abstractions for the model services used while indexing.
//
// The package defines the Embedder interface and the ServiceContext that
// bundles an embedder with an optional language model and optional tracing
// callbacks. Business logic depends on these abstractions rather than on a
// concrete provider.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors in ai/openai return INTERFACE types (ai.Embedder) or the
// shared *ai.ServiceContext, so callers never couple to langchaingo types.
// Test constructors in ai/mock return CONCRETE types to enable assertions
// (CallCount, EmbedTextsFunc, Reset).
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingModel("nomic-embed-text"))
//	svc, err := openai.NewServiceContext(config, openai.WithTracing(nil))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	vectors, err := svc.Embedder.EmbedTexts(ctx, []string{"hello", "world"})
package ai
