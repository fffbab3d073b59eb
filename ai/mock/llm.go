package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// MockLLM is a test double for llms.Model.
type MockLLM struct {
	// Response is returned as the single choice when GenerateFunc is nil.
	Response string

	// GenerateFunc is called by GenerateContent if set.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

var _ llms.Model = (*MockLLM)(nil)

// NewMockLLM creates a mock LLM that always answers response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// GenerateContent records the text parts of the request and returns one choice.
func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt string
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				prompt += tc.Text
			}
		}
	}

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	text := m.Response
	if m.GenerateFunc != nil {
		var err error
		text, err = m.GenerateFunc(ctx, prompt)
		if err != nil {
			return nil, err
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}, nil
}

// Call implements the legacy single-prompt method of llms.Model.
func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, options...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("mock llm returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// Prompts returns the prompts received so far.
func (m *MockLLM) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
