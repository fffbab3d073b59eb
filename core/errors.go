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


package core

import "errors"

// Error kinds surfaced by the indexing stages.
// Components wrap the underlying library error with one of these so callers
// can classify failures with errors.Is while keeping the original message.
var (
	// ErrNotFound indicates a source path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrParse indicates content could not be decoded in the expected format.
	ErrParse = errors.New("parse error")

	// ErrConfig indicates missing or invalid configuration.
	ErrConfig = errors.New("config error")

	// ErrConnection indicates the vector store is unreachable or rejected the credentials.
	ErrConnection = errors.New("connection error")

	// ErrEmbedding indicates the embedding call failed.
	ErrEmbedding = errors.New("embedding error")

	// ErrWrite indicates the vector store write failed.
	ErrWrite = errors.New("write error")

	// ErrLLM indicates the optional language model call failed.
	ErrLLM = errors.New("language model error")
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidNode indicates a Node failed validation.
	ErrInvalidNode = errors.New("invalid node")

	// ErrEmptyPath indicates the Path field is empty.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrOrphanNode indicates a node has no parent document.
	ErrOrphanNode = errors.New("node has no parent document")

	// ErrDimensionMismatch indicates a vector's length differs from the configured dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
