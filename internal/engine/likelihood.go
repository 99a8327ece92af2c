package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/merfai/merf-go/internal/models"
)

// RiskBand is the discrete classification of a likelihood score.
type RiskBand string

const (
	RiskLow    RiskBand = "low"
	RiskMedium RiskBand = "medium"
	RiskHigh   RiskBand = "high"
)

// Likelihood fusion weights. Emotional intensity carries the largest
// share; novelty, motif risk, and repetition split the remainder.
const (
	likelihoodIntensityWeight  = 0.35
	likelihoodNoveltyWeight    = 0.20
	likelihoodMotifRiskWeight  = 0.25
	likelihoodRepetitionWeight = 0.20
)

// Risk band boundaries, half-open: score < 35 is low, [35,70) medium,
// >= 70 high.
const (
	riskMediumFloor = 35
	riskHighFloor   = 70
)

// LikelihoodResult is the transient output of scoring one dream against
// the user's own dream history. Computed fresh per call; never cached,
// since it depends on the full current corpus.
type LikelihoodResult struct {
	Score      int         `json:"score"` // 0-100
	Band       RiskBand    `json:"band"`
	Motifs     []MotifRisk `json:"motifs"`
	Intensity  float64     `json:"intensity"`  // [0,1]
	Novelty    float64     `json:"novelty"`    // [0,1]
	MotifRisk  float64     `json:"motif_risk"` // [0,1]
	Repetition float64     `json:"repetition"` // [0,1]
	Note       string      `json:"note"`
}

// ScoreLikelihood predicts how likely a dream is to surface later as a
// deja vu experience, as a 0-100 score with a risk band. The Note field is
// the deterministic template; the service layer may overwrite it with
// generated prose, but the numeric fields never depend on that succeeding.
func ScoreLikelihood(lex Lexicon, dream models.DreamRecord, history []models.DreamRecord) LikelihoodResult {
	analysis := lex.ExtractMotifs(ComposeDream(dream))

	intensity := clamp01(float64(dream.Intensity) / 10)
	novelty := Novelty(dream, history)
	repetition := Repetition(dream, history)

	raw := likelihoodIntensityWeight*intensity +
		likelihoodNoveltyWeight*novelty +
		likelihoodMotifRiskWeight*analysis.AvgRisk +
		likelihoodRepetitionWeight*repetition

	score := int(math.Round(raw * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	result := LikelihoodResult{
		Score:      score,
		Band:       BandForScore(score),
		Motifs:     analysis.Risks,
		Intensity:  intensity,
		Novelty:    novelty,
		MotifRisk:  analysis.AvgRisk,
		Repetition: repetition,
	}
	result.Note = templateNote(result)
	return result
}

// BandForScore maps a 0-100 score to its risk band.
func BandForScore(score int) RiskBand {
	switch {
	case score >= riskHighFloor:
		return RiskHigh
	case score >= riskMediumFloor:
		return RiskMedium
	default:
		return RiskLow
	}
}

// templateNote builds the deterministic fallback explanation from the
// computed features alone.
func templateNote(r LikelihoodResult) string {
	if len(r.Motifs) == 0 {
		return fmt.Sprintf("Deja vu likelihood is %s (%d/100).", r.Band, r.Score)
	}

	names := make([]string, len(r.Motifs))
	for i, m := range r.Motifs {
		names[i] = m.Name
	}
	return fmt.Sprintf("Deja vu likelihood is %s (%d/100), driven by the %s motif(s).",
		r.Band, r.Score, strings.Join(names, ", "))
}
