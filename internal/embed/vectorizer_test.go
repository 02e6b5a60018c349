package embed

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/noterag/internal/model"
)

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embed"
}

func TestEmbedEmptyTextReturnsSentinel(t *testing.T) {
	fake := &fakeEmbedder{vec: []float32{1, 2, 3}}
	v := NewVectorizer(Options{Embedder: fake, Dimension: 3})
	for _, text := range []string{"", "   ", "\n\t"} {
		emb := v.Embed(context.Background(), text, "")
		assert.Equal(t, model.EmbeddingSourceNone, emb.Source)
		assert.Len(t, emb.Values, 3)
		assert.True(t, emb.IsZero())
	}
	assert.Zero(t, fake.calls, "empty input must not reach the provider")
}

func TestEmbedProviderSuccess(t *testing.T) {
	fake := &fakeEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	v := NewVectorizer(Options{Embedder: fake, Dimension: 3})
	emb := v.Embed(context.Background(), "hello", "")
	assert.Equal(t, "fake-embed", emb.Source)
	assert.Equal(t, fake.vec, emb.Values)
}

func TestEmbedProviderFailureFallsBack(t *testing.T) {
	fake := &fakeEmbedder{err: fmt.Errorf("boom")}
	v := NewVectorizer(Options{Embedder: fake, Dimension: 8})
	emb := v.Embed(context.Background(), "hello", "")
	require.Equal(t, model.EmbeddingSourceFallback, emb.Source)
	assert.Len(t, emb.Values, 8)
	assert.False(t, emb.IsZero())
}

func TestEmbedProviderWrongDimensionFallsBack(t *testing.T) {
	fake := &fakeEmbedder{vec: []float32{1, 2}}
	v := NewVectorizer(Options{Embedder: fake, Dimension: 8})
	emb := v.Embed(context.Background(), "hello", "")
	assert.Equal(t, model.EmbeddingSourceFallback, emb.Source)
	assert.Len(t, emb.Values, 8)
}

func TestFallbackDeterministic(t *testing.T) {
	v1 := NewVectorizer(Options{Dimension: 64})
	v2 := NewVectorizer(Options{Dimension: 64})
	a := v1.Embed(context.Background(), "hello world", "")
	b := v2.Embed(context.Background(), "hello world", "")
	require.Equal(t, model.EmbeddingSourceFallback, a.Source)
	if !reflect.DeepEqual(a.Values, b.Values) {
		t.Fatal("fallback embedding is not deterministic for identical input")
	}
	assert.False(t, a.IsZero())
}

func TestFallbackDifferentTextsDiffer(t *testing.T) {
	v := NewVectorizer(Options{Dimension: 64})
	a := v.Embed(context.Background(), "hello world", "")
	b := v.Embed(context.Background(), "goodbye moon", "")
	assert.False(t, reflect.DeepEqual(a.Values, b.Values))
}

func TestFallbackIsNormalized(t *testing.T) {
	v := NewVectorizer(Options{Dimension: 32})
	emb := v.Embed(context.Background(), "some note text about groceries", "")
	var norm float64
	for _, x := range emb.Values {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, norm, 1e-4)
}

func TestDefaultDimension(t *testing.T) {
	v := NewVectorizer(Options{})
	assert.Equal(t, DefaultDimension, v.Dimension())
	emb := v.Embed(context.Background(), "x", "")
	assert.Len(t, emb.Values, DefaultDimension)
}
