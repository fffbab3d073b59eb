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


package mock

import "github.com/poiesic/vecload/ai"

// NewServiceContext creates a service context backed by a default mock embedder.
// Use ServiceContextWith to inject configured doubles.
func NewServiceContext() *ai.ServiceContext {
	return ServiceContextWith(NewMockEmbedder(), nil)
}

// ServiceContextWith creates a service context around the given doubles.
// llm may be nil. The context's dimensions follow the embedder.
func ServiceContextWith(embedder *MockEmbedder, llm *MockLLM) *ai.ServiceContext {
	svc := ai.NewServiceContext(embedder, "mock-embedding", embedder.Dimensions, nil, nil)
	if llm != nil {
		svc.LLM = llm
	}
	return svc
}
