package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/vecload/ai"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/progress"
	"github.com/poiesic/vecload/storage"
	"github.com/tmc/langchaingo/llms"
)

const (
	// DefaultBatchSize is the number of nodes embedded and written per round trip.
	DefaultBatchSize = 64

	// MetaDocumentTitle is set on every node when a language model is configured.
	MetaDocumentTitle = "document_title"

	// titleSampleChars bounds the document text sent to the language model.
	titleSampleChars = 2000
)

const titlePrompt = `Context information is below.
---------------------
%s
---------------------
Give a title that summarizes the context above in one line. Reply with the title only.
Title: `

// Indexer embeds nodes and writes them to a vector store.
type Indexer struct {
	svc            *ai.ServiceContext
	store          storage.VectorStore
	batchSize      int
	normalize      bool
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithBatchSize sets how many nodes are embedded and written together.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			return fmt.Errorf("%w: batch size must be at least 1, got %d", core.ErrConfig, size)
		}
		ix.batchSize = size
		return nil
	}
}

// WithProgress reports embedded nodes to w every interval nodes.
func WithProgress(w io.Writer, interval int) Option {
	return func(ix *Indexer) error {
		ix.progress = w
		ix.reportInterval = interval
		return nil
	}
}

// WithNormalize scales every vector to unit length before it is written.
func WithNormalize(enabled bool) Option {
	return func(ix *Indexer) error {
		ix.normalize = enabled
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates an Indexer writing to store with the embedder in svc.
func NewIndexer(svc *ai.ServiceContext, store storage.VectorStore, opts ...Option) (*Indexer, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, ErrServiceContextRequired)
	}
	if svc.Embedder == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, ErrEmbedderRequired)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, ErrVectorStoreRequired)
	}

	ix := &Indexer{
		svc:       svc,
		store:     store,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}
	ix.logger = ix.logger.With("component", "indexer", "collection", store.Collection())

	if svc.Dimensions > 0 && svc.Dimensions != store.Dimensions() {
		ix.logger.Warn("embedding dimensions differ from the vector store",
			"embedding", svc.Dimensions, "store", store.Dimensions())
	}
	return ix, nil
}

// Build embeds the nodes in batches and writes each batch to the store.
//
// The first failure aborts the build: embedding failures wrap
// core.ErrEmbedding, vectors whose length differs from the store's
// dimensions and store failures wrap core.ErrWrite, and title generation
// failures wrap core.ErrLLM. Nothing is retried.
func (ix *Indexer) Build(ctx context.Context, nodes []*core.Node) (*Index, error) {
	for _, n := range nodes {
		if err := core.ValidateNode(n); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
		}
	}

	if ix.svc.LLM != nil {
		if err := ix.addTitles(ctx, nodes); err != nil {
			return nil, err
		}
	}

	var tracker *progress.Tracker
	if ix.progress != nil {
		tracker = progress.NewTracker(ix.progress, "Embedding", "nodes", len(nodes), ix.reportInterval)
		tracker.Start()
	}

	ix.logger.Info("indexing nodes", "nodes", len(nodes), "batch_size", ix.batchSize)
	batches := (len(nodes) + ix.batchSize - 1) / ix.batchSize
	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := b * ix.batchSize
		end := min(start+ix.batchSize, len(nodes))

		ix.svc.Trace(ctx, fmt.Sprintf("embedding batch %d/%d (%d nodes)", b+1, batches, end-start))
		if err := ix.processBatch(ctx, nodes[start:end]); err != nil {
			return nil, err
		}
		tracker.Increment(end - start)
	}
	tracker.Finish()

	index := &Index{
		ID:             uuid.NewString(),
		Collection:     ix.store.Collection(),
		Dimensions:     ix.store.Dimensions(),
		EmbeddingModel: ix.svc.EmbeddingModel,
		NodeIDs:        make([]core.ID, len(nodes)),
		CreatedAt:      time.Now().UTC(),
	}
	seen := make(map[core.ID]bool)
	for i, n := range nodes {
		index.NodeIDs[i] = n.Id
		if !seen[n.DocumentId] {
			seen[n.DocumentId] = true
			index.DocumentIDs = append(index.DocumentIDs, n.DocumentId)
		}
	}

	ix.logger.Info("index built", "index", index.ID, "nodes", len(nodes), "documents", len(index.DocumentIDs))
	return index, nil
}

func (ix *Indexer) processBatch(ctx context.Context, batch []*core.Node) error {
	texts := make([]string, len(batch))
	for i, n := range batch {
		texts[i] = n.Text
	}

	ix.logger.Debug("generating embeddings", "nodes", len(texts))
	vectors, err := ix.svc.Embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ix.logger.Error("error generating embeddings", "err", err)
		return fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: embedding result mismatch, expected %d, received %d",
			core.ErrEmbedding, len(batch), len(vectors))
	}

	dims := ix.store.Dimensions()
	for i, vec := range vectors {
		if err := core.ValidateVector(vec, dims); err != nil {
			ix.logger.Error("embedding does not fit the vector store", "node", batch[i].Id, "err", err)
			return fmt.Errorf("%w: node %s: %w", core.ErrWrite, batch[i].Id, err)
		}
	}
	for i, vec := range vectors {
		if ix.normalize {
			vec = NormalizeVector(vec)
		}
		batch[i].Vector = vec
	}

	if _, err := ix.store.Add(ctx, batch); err != nil {
		ix.logger.Error("error writing nodes", "nodes", len(batch), "err", err)
		return fmt.Errorf("%w: %w", core.ErrWrite, err)
	}
	return nil
}

// addTitles asks the language model for one title per document and sets it
// on every node of that document.
func (ix *Indexer) addTitles(ctx context.Context, nodes []*core.Node) error {
	var order []core.ID
	samples := make(map[core.ID]*strings.Builder)
	for _, n := range nodes {
		sb, ok := samples[n.DocumentId]
		if !ok {
			sb = &strings.Builder{}
			samples[n.DocumentId] = sb
			order = append(order, n.DocumentId)
		}
		if sb.Len() < titleSampleChars {
			sb.WriteString(n.Text)
			sb.WriteString("\n")
		}
	}

	titles := make(map[core.ID]string, len(order))
	for _, docID := range order {
		sample := samples[docID].String()
		if len(sample) > titleSampleChars {
			sample = strings.ToValidUTF8(sample[:titleSampleChars], "")
		}
		ix.svc.Trace(ctx, fmt.Sprintf("extracting title for document %s", docID))
		title, err := llms.GenerateFromSinglePrompt(ctx, ix.svc.LLM, fmt.Sprintf(titlePrompt, sample))
		if err != nil {
			ix.logger.Error("error extracting title", "document", docID, "err", err)
			return fmt.Errorf("%w: %w", core.ErrLLM, err)
		}
		titles[docID] = cleanTitle(title)
		ix.logger.Debug("extracted title", "document", docID, "title", titles[docID])
	}

	for _, n := range nodes {
		if title := titles[n.DocumentId]; title != "" {
			if n.Metadata == nil {
				n.Metadata = make(map[string]string)
			}
			n.Metadata[MetaDocumentTitle] = title
		}
	}
	return nil
}

// cleanTitle keeps the first non-empty line without surrounding quotes.
func cleanTitle(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		if line != "" {
			return line
		}
	}
	return ""
}
