package ai

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

// LogHandler is a langchaingo callbacks.Handler that writes trace events to slog at debug level.
type LogHandler struct {
	callbacks.SimpleHandler
	logger *slog.Logger
}

var _ callbacks.Handler = (*LogHandler)(nil)

// NewLogHandler creates a LogHandler. A nil logger uses slog.Default().
func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{logger: logger.With("component", "trace")}
}

func (h *LogHandler) HandleText(ctx context.Context, text string) {
	h.logger.DebugContext(ctx, text)
}

func (h *LogHandler) HandleLLMGenerateContentStart(ctx context.Context, ms []llms.MessageContent) {
	h.logger.DebugContext(ctx, "llm request", "messages", len(ms))
}

func (h *LogHandler) HandleLLMGenerateContentEnd(ctx context.Context, res *llms.ContentResponse) {
	choices := 0
	if res != nil {
		choices = len(res.Choices)
	}
	h.logger.DebugContext(ctx, "llm response", "choices", choices)
}

func (h *LogHandler) HandleLLMError(ctx context.Context, err error) {
	h.logger.DebugContext(ctx, "llm error", "err", err)
}
