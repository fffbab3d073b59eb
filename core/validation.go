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

import (
	"fmt"
)

// ValidateDocument checks that a Document has a path.
// Empty content is allowed; chunkers decide what it means.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyPath)
	}

	return nil
}

// ValidateNode checks that a Node carries text and a back-reference to its document.
func ValidateNode(node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: node is nil", ErrInvalidNode)
	}

	if node.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNode, ErrEmptyText)
	}

	if node.DocumentId == 0 || node.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNode, ErrOrphanNode)
	}

	return nil
}

// ValidateVector checks that vec has exactly dims components.
func ValidateVector(vec []float32, dims int) error {
	if len(vec) != dims {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dims, len(vec))
	}
	return nil
}
