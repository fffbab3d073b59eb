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


package openai

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/vecload/ai"
	"github.com/poiesic/vecload/core"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type options struct {
	handler    callbacks.Handler
	httpClient *http.Client
}

// Option configures NewServiceContext.
type Option func(*options)

// WithTracing routes langchaingo callback events to logger at debug level.
// A nil logger uses slog.Default().
func WithTracing(logger *slog.Logger) Option {
	return func(o *options) {
		o.handler = ai.NewLogHandler(logger)
	}
}

// WithCallbacks installs a custom callbacks handler.
func WithCallbacks(handler callbacks.Handler) Option {
	return func(o *options) {
		o.handler = handler
	}
}

// WithHTTPClient sends every model request through client. Closing the
// service context closes the client's idle connections.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// NewServiceContext builds the embedder and, when config names an LLM model,
// the language model. The config is validated and normalized before use.
func NewServiceContext(config *ai.Config, opts ...Option) (*ai.ServiceContext, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}

	embedder, err := newEmbedder(config, o.handler, o.httpClient)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
	}

	var llm llms.Model
	if config.HasLLM() {
		llm, err = newLLM(config, o.handler, o.httpClient)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
		}
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Debug("service context ready",
		"embedding_host", config.EmbeddingHost,
		"embedding_model", config.EmbeddingModel,
		"llm", config.LLMModel,
		"tracing", o.handler != nil)

	svc := ai.NewServiceContext(embedder, config.EmbeddingModel, config.Dimensions, llm, o.handler)
	client := o.httpClient
	svc.OnClose(func() error {
		logger.Debug("closing idle model connections")
		client.CloseIdleConnections()
		return nil
	})
	return svc, nil
}

func newLLM(config *ai.Config, handler callbacks.Handler, client *http.Client) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithBaseURL(config.LLMHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.LLMModel),
		openai.WithHTTPClient(client),
	}
	if handler != nil {
		opts = append(opts, openai.WithCallback(handler))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return llm, nil
}
