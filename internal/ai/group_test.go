package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	name  string
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

func (s *stubEmbedder) ModelName() string {
	return s.name
}

type stubGenerator struct {
	resp  string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.resp, nil
}

func TestGroupEmbedderFallsThrough(t *testing.T) {
	primary := &stubEmbedder{name: "primary", err: ErrUnavailable}
	secondary := &stubEmbedder{name: "secondary", vec: []float32{1, 2}}
	group := NewGroupEmbedder([]EmbedderEntry{
		{Name: "primary", Embedder: primary},
		{Name: "secondary", Embedder: secondary},
	})

	res, err := group.Embed(context.Background(), "hello", TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, res)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, "primary|secondary", group.ModelName())
}

func TestGroupEmbedderAllFail(t *testing.T) {
	group := NewGroupEmbedder([]EmbedderEntry{
		{Name: "a", Embedder: &stubEmbedder{name: "a", err: fmt.Errorf("a down")}},
		{Name: "b", Embedder: &stubEmbedder{name: "b", err: fmt.Errorf("b down")}},
	})
	_, err := group.Embed(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b down", "last error wins")
}

func TestGroupEmbedderEmpty(t *testing.T) {
	assert.Nil(t, NewGroupEmbedder(nil))
}

func TestGroupGeneratorFirstSuccessWins(t *testing.T) {
	first := &stubGenerator{resp: "first"}
	second := &stubGenerator{resp: "second"}
	group := NewGroupGenerator([]GeneratorEntry{
		{Name: "first", Generator: first},
		{Name: "second", Generator: second},
	})

	res, err := group.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "first", res)
	assert.Zero(t, second.calls)
}

func TestProviderRegistryUnknown(t *testing.T) {
	_, err := NewProvider("no-such-provider", nil)
	assert.Error(t, err)
	_, err = NewEmbedProvider("no-such-provider", nil)
	assert.Error(t, err)
	_, err = NewProvider("", nil)
	assert.Error(t, err)
}

func TestRegisteredProviders(t *testing.T) {
	for _, name := range []string{"openai", "gemini"} {
		p, err := NewProvider(name, map[string]string{"api_key": "k"})
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())

		e, err := NewEmbedProvider(name, map[string]string{"api_key": "k"})
		require.NoError(t, err, name)
		assert.Equal(t, name, e.Name())
	}
}
