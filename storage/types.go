package storage

import (
	"time"

	"github.com/poiesic/vecload/core"
)

// IndexRecord is the persisted metadata of one indexing run.
type IndexRecord struct {
	ID             string
	Collection     string
	Dimensions     int
	EmbeddingModel string
	NodeIDs        []core.ID
	DocumentIDs    []core.ID
	CreatedAt      time.Time
}
