package embed

import (
	"math"
	"strings"
	"unicode"
)

// Fallback embedding tuning. The bucket scheme mirrors the character
// accumulation the browser side has always used, so vectors stay
// comparable across strategies only in the weak "similar text, similar
// vector" sense.
const (
	secondaryWeight = 0.5
	wordWindow      = 8
)

// fallbackVector derives an embedding purely from the text's
// characters: no provider, no randomness. Identical input produces a
// bit-identical vector on every run.
func fallbackVector(text string, dim int) []float32 {
	acc := make([]float64, dim)
	pos := 0
	for _, r := range text {
		c := float64(r)
		acc[pos%dim] += c
		acc[(pos+1)%dim] += c * secondaryWeight
		pos++
	}

	// Word-boundary pattern: each word's rune sum lands in a bucket
	// rotated through a fixed-width window.
	slot := 0
	for _, word := range strings.FieldsFunc(text, isWordSeparator) {
		var sum float64
		for _, r := range word {
			sum += float64(r)
		}
		acc[(int(sum)+slot)%dim] += sum / wordWindow
		slot = (slot + 1) % wordWindow
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, dim)
	if norm == 0 {
		return out
	}
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}

func isWordSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}
