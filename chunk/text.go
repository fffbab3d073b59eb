package chunk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/progress"
	"github.com/tmc/langchaingo/textsplitter"
)

type textChunker struct {
	splitter textsplitter.RecursiveCharacter
	progress io.Writer
	logger   *slog.Logger
}

func newTextChunker(o options) *textChunker {
	return &textChunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(o.chunkSize),
			textsplitter.WithChunkOverlap(o.chunkOverlap),
		),
		progress: o.progress,
		logger:   slog.Default().With("component", "chunker", "policy", PolicyText),
	}
}

func (c *textChunker) Chunk(ctx context.Context, docs []*core.Document) ([]*core.Node, error) {
	var tracker *progress.Tracker
	if c.progress != nil {
		tracker = progress.NewTracker(c.progress, "Parsing", "docs", len(docs), 1)
		tracker.Start()
	}

	var nodes []*core.Node
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := core.ValidateDocument(doc); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
		}

		chunks, err := c.splitter.SplitText(string(doc.Content))
		if err != nil {
			c.logger.Error("failed to split document", "path", doc.Path, "err", err)
			return nil, fmt.Errorf("%w: %s: %w", core.ErrParse, doc.Path, err)
		}

		position := 0
		for i, text := range chunks {
			if strings.TrimSpace(text) == "" {
				continue
			}
			nodes = append(nodes, core.NewNode(doc, position, text, map[string]string{
				MetaSource: doc.Path,
				MetaChunk:  strconv.Itoa(i),
			}))
			position++
		}
		tracker.Increment(1)
	}
	tracker.Finish()

	c.logger.Info("chunked documents", "documents", len(docs), "nodes", len(nodes))
	return nodes, nil
}
