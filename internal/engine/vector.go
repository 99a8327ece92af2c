package engine

import (
	"math"
	"sort"
)

// Cosine computes the cosine similarity between two float32 vectors.
// Empty vectors, mismatched lengths, and zero-norm vectors all yield 0:
// "no comparable signal" is a value here, never an error.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dotProduct += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dotProduct / denom
}

// Candidate pairs an ID with its embedding for top-K selection.
type Candidate struct {
	ID        string
	Embedding []float32
}

// ScoredCandidate is one top-K result.
type ScoredCandidate struct {
	ID    string
	Score float64
}

// TopK scores every candidate with a non-empty embedding against target,
// drops candidates below minScore, and returns the best k in descending
// order. The sort is stable: ties keep original candidate order, so output
// is reproducible for a fixed input slice.
func TopK(target []float32, candidates []Candidate, k int, minScore float64) []ScoredCandidate {
	if k <= 0 || len(target) == 0 {
		return nil
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		score := Cosine(target, c.Embedding)
		if score < minScore {
			continue
		}
		scored = append(scored, ScoredCandidate{ID: c.ID, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
