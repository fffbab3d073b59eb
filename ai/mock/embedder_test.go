package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/vecload/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "world")
	require.NoError(t, err)

	assert.Len(t, a, ai.DefaultDimensions)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 3, m.CallCount())
}

func TestMockEmbedder_Batches(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedderWithDimensions(8)

	vecs, err := m.EmbedTexts(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Len(t, vecs[0], 8)

	_, err = m.EmbedTexts(ctx, []string{"d"})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 1}, m.BatchSizes())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Empty(t, m.BatchSizes())
}

func TestMockEmbedder_Injection(t *testing.T) {
	m := NewMockEmbedder()
	boom := errors.New("boom")
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, boom
	}

	_, err := m.EmbedTexts(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)
}

func TestMockLLM(t *testing.T) {
	ctx := context.Background()
	m := NewMockLLM("A Title")

	out, err := llms.GenerateFromSinglePrompt(ctx, m, "name this")
	require.NoError(t, err)
	assert.Equal(t, "A Title", out)
	assert.Equal(t, []string{"name this"}, m.Prompts())
}

func TestServiceContextWith(t *testing.T) {
	embedder := NewMockEmbedderWithDimensions(4)
	svc := ServiceContextWith(embedder, NewMockLLM("t"))

	assert.Equal(t, 4, svc.Dimensions)
	assert.NotNil(t, svc.LLM)
	assert.NoError(t, svc.Close())

	svc = NewServiceContext()
	assert.Nil(t, svc.LLM)
	assert.Equal(t, ai.DefaultDimensions, svc.Dimensions)
}
