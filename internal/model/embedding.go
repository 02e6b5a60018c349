package model

// Embedding source tags.
const (
	EmbeddingSourceNone     = "none"
	EmbeddingSourceFallback = "fallback"
)

// Embedding is a fixed-dimension vector plus the provenance of the
// strategy that produced it. An all-zero Values slice is the
// "embedding unavailable" sentinel; it must never match any query with
// a nonzero score.
type Embedding struct {
	Values []float32 `json:"values"`
	Source string    `json:"source"`
}

// ZeroEmbedding returns the unavailable sentinel for the given
// dimension.
func ZeroEmbedding(dim int) Embedding {
	return Embedding{
		Values: make([]float32, dim),
		Source: EmbeddingSourceNone,
	}
}

// IsZero reports whether the embedding carries no usable signal:
// either empty or every component exactly zero.
func (e Embedding) IsZero() bool {
	for _, v := range e.Values {
		if v != 0 {
			return false
		}
	}
	return true
}
