package embed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/noterag/internal/ai"
	"github.com/xxxsen/noterag/internal/model"
)

const (
	// DefaultDimension matches text-embedding-3-small.
	DefaultDimension = 1536

	defaultTimeout = 30 * time.Second
)

// Options configures a Vectorizer. Embedder is optional; without one
// every call takes the deterministic fallback path.
type Options struct {
	Embedder  ai.IEmbedder
	Dimension int
	Timeout   time.Duration
}

// Vectorizer turns text into a fixed-dimension embedding. It never
// returns an error: empty input yields the zero sentinel and provider
// failures degrade to the fallback vector.
type Vectorizer struct {
	embedder ai.IEmbedder
	dim      int
	timeout  time.Duration
}

func NewVectorizer(opts Options) *Vectorizer {
	dim := opts.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Vectorizer{
		embedder: opts.Embedder,
		dim:      dim,
		timeout:  timeout,
	}
}

func (v *Vectorizer) Dimension() int {
	return v.dim
}

// Embed vectorizes text. taskType is the retrieval hint passed through
// to the provider (ai.TaskRetrievalQuery / ai.TaskRetrievalDocument).
func (v *Vectorizer) Embed(ctx context.Context, text string, taskType string) model.Embedding {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.ZeroEmbedding(v.dim)
	}
	if v.embedder != nil {
		values, err := v.embedWithProvider(ctx, trimmed, taskType)
		if err == nil {
			return model.Embedding{Values: values, Source: v.embedder.ModelName()}
		}
		logutil.GetLogger(ctx).Warn("provider embedding failed, using fallback",
			zap.String("model", v.embedder.ModelName()),
			zap.Error(err),
		)
	}
	return model.Embedding{
		Values: fallbackVector(trimmed, v.dim),
		Source: model.EmbeddingSourceFallback,
	}
}

func (v *Vectorizer) embedWithProvider(ctx context.Context, text string, taskType string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	values, err := v.embedder.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	if len(values) != v.dim {
		return nil, fmt.Errorf("provider returned dimension %d, want %d", len(values), v.dim)
	}
	return values, nil
}
