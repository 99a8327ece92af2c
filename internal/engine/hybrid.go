package engine

import "github.com/merfai/merf-go/internal/models"

// Method identifies which signal produced a match score.
//
// Historical note: an early version of the product reported "cosine" for
// the no-embedding fallback in one code path. That alias is gone; the
// fallback is always MethodFeature, and MethodEmbedding is reserved for
// raw vector comparisons (TopK) that never consult structured fields.
type Method string

const (
	MethodHybrid    Method = "hybrid"
	MethodFeature   Method = "feature"
	MethodEmbedding Method = "embedding"
)

// Hybrid score weights: embedding similarity dominates when available,
// the structured-field heuristic keeps a fixed minority share.
const (
	hybridEmbeddingWeight = 0.7
	hybridFeatureWeight   = 0.3
)

// MatchResult is the transient output of one dream/deja-vu comparison.
type MatchResult struct {
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"` // [0,1]
	Method      Method  `json:"method"`
}

// Match fuses embedding and feature similarity into one comparable score.
// When both records carry embeddings the score is
// 0.7*cosine + 0.3*feature with MethodHybrid. When either embedding is
// missing the score degrades to the feature heuristic alone with
// MethodFeature; the pipeline never fails just because the embedding
// provider was unavailable.
func Match(dream models.DreamRecord, entry models.DejavuEntry) (float64, Method) {
	feature := FeatureSimilarity(dream, entry)

	if !dream.HasEmbedding() || !entry.HasEmbedding() {
		return feature, MethodFeature
	}

	semantic := Cosine(dream.Embedding, entry.Embedding)
	score := hybridEmbeddingWeight*semantic + hybridFeatureWeight*feature
	return clamp01(score), MethodHybrid
}
