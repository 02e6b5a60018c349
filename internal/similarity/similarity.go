// Package similarity holds the pure vector math behind semantic
// search: cosine similarity, euclidean distance and deterministic
// ranking. Nothing here touches I/O or returns errors; a bad vector in
// a ranking pass scores 0 instead of aborting the pass.
package similarity

import (
	"math"
	"sort"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Mismatched or empty lengths and zero-magnitude vectors score 0 — a
// usage error is indistinguishable from "no relation" on purpose.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Euclidean returns the L2 distance between a and b; lower means more
// similar. Mismatched or empty inputs are infinitely far apart.
func Euclidean(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return float32(math.Inf(1))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// Candidate is one rankable item. Mtime (unix milli) breaks score
// ties; ID breaks Mtime ties.
type Candidate struct {
	ID     string
	Vector []float32
	Mtime  int64
}

type Scored struct {
	ID    string
	Score float32
	Mtime int64
}

// RankOptions bounds a ranking pass. Limit <= 0 means unlimited.
type RankOptions struct {
	Threshold float32
	Limit     int
}

// Rank scores every candidate against query and returns the survivors
// ordered by score descending, then Mtime descending, then ID
// ascending. Candidates without a usable vector (nil or zero
// magnitude, the "embedding unavailable" sentinel) are skipped, as is
// the entire pass when the query itself has no magnitude. Never
// returns an error; empty input yields empty output.
func Rank(cands []Candidate, query []float32, opts RankOptions) []Scored {
	if len(cands) == 0 || !hasMagnitude(query) {
		return nil
	}
	scored := make([]Scored, 0, len(cands))
	for _, c := range cands {
		if !hasMagnitude(c.Vector) {
			continue
		}
		score := Cosine(query, c.Vector)
		if score < opts.Threshold {
			continue
		}
		scored = append(scored, Scored{ID: c.ID, Score: score, Mtime: c.Mtime})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Mtime != scored[j].Mtime {
			return scored[i].Mtime > scored[j].Mtime
		}
		return scored[i].ID < scored[j].ID
	})
	if opts.Limit > 0 && len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}
	return scored
}

func hasMagnitude(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}
