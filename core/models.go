package core

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so re-runs over the same input
// produce the same identifiers.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID as a fixed-width hex string, used as the node_id column value.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Document is a source file read by the loader.
type Document struct {
	Id       ID
	Path     string            // Originating path as given to the loader
	Content  []byte            // Raw file content
	Metadata map[string]string // Source metadata (e.g., "source", "format")
	LoadedAt time.Time
}

// DocumentID derives a document's ID from its path and content.
func DocumentID(path string, content []byte) ID {
	return IDFromContent(path + "\x00" + string(content))
}

// Node is a chunk derived from exactly one Document.
type Node struct {
	Id         ID
	DocumentId ID                // Parent document
	Path       string            // Parent document path
	Position   int               // Order of the node within its document, 0-indexed
	Text       string            // Chunk payload sent to the embedder
	Metadata   map[string]string // Chunk metadata (e.g., "json_path", "document_title")
	Vector     []float32         // Embedding vector (populated by the indexer)
}

// NodeID derives a node's ID from its parent document, position, and text.
func NodeID(documentID ID, position int, text string) ID {
	return IDFromContent(documentID.String() + ":" + strconv.Itoa(position) + ":" + text)
}

// NewNode builds a node for doc at the given position.
// Metadata is copied from the document and then overlaid with extra.
func NewNode(doc *Document, position int, text string, extra map[string]string) *Node {
	metadata := make(map[string]string, len(doc.Metadata)+len(extra))
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	for k, v := range extra {
		metadata[k] = v
	}
	return &Node{
		Id:         NodeID(doc.Id, position, text),
		DocumentId: doc.Id,
		Path:       doc.Path,
		Position:   position,
		Text:       text,
		Metadata:   metadata,
	}
}
