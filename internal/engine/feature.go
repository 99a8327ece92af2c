package engine

import (
	"strings"
	"unicode"

	"github.com/merfai/merf-go/internal/models"
)

// FeatureWeights holds the hand-tuned weights for structured-field
// similarity. They live in a struct so tests can substitute a minimal set
// without touching the scoring logic.
type FeatureWeights struct {
	Location  float64
	Emotion   float64
	Intensity float64
	Lexical   float64
}

// DefaultFeatureWeights are the production weights.
var DefaultFeatureWeights = FeatureWeights{
	Location:  0.40,
	Emotion:   0.35,
	Intensity: 0.15,
	Lexical:   0.10,
}

// FeatureSimilarity scores a dream against a deja vu entry using structured
// fields only, with DefaultFeatureWeights. Used standalone when embeddings
// are unavailable and as the heuristic share of the hybrid score otherwise.
// Output is in [0,1].
func FeatureSimilarity(dream models.DreamRecord, entry models.DejavuEntry) float64 {
	return FeatureSimilarityWeighted(dream, entry, DefaultFeatureWeights)
}

// FeatureSimilarityWeighted is FeatureSimilarity with explicit weights.
// The earned weight is normalized by the total applicable weight; every
// weight is currently always applicable, so the divisor is the weight sum.
// The normalization keeps the formula extensible to optional signals.
func FeatureSimilarityWeighted(dream models.DreamRecord, entry models.DejavuEntry, w FeatureWeights) float64 {
	var earned float64

	// Location: full credit on exact match, half credit when one string
	// contains the other (e.g. "ev" vs "evin salonu").
	dreamLoc := strings.ToLower(strings.TrimSpace(dream.Location))
	entryLoc := strings.ToLower(strings.TrimSpace(entry.Location))
	switch {
	case dreamLoc != "" && dreamLoc == entryLoc:
		earned += w.Location
	case dreamLoc != "" && entryLoc != "" &&
		(strings.Contains(dreamLoc, entryLoc) || strings.Contains(entryLoc, dreamLoc)):
		earned += w.Location / 2
	}

	if dream.Emotion != "" && strings.EqualFold(dream.Emotion, entry.Emotion) {
		earned += w.Emotion
	}

	// Intensity vs familiarity closeness on the shared 1-10 scale.
	diff := dream.Intensity - entry.Familiarity
	if diff < 0 {
		diff = -diff
	}
	closeness := 1 - float64(diff)/10
	if closeness < 0 {
		closeness = 0
	}
	earned += closeness * w.Intensity

	earned += lexicalOverlap(dream.Description, entry.Description) * w.Lexical

	applicable := w.Location + w.Emotion + w.Intensity + w.Lexical
	if applicable == 0 {
		return 0
	}
	return clamp01(earned / applicable)
}

// lexicalOverlap measures shared vocabulary between two descriptions over
// words longer than 3 runes. Overlap counts every dream word found in the
// entry (duplicates included), biasing the ratio toward the dream's own
// vocabulary rather than a strict set intersection.
func lexicalOverlap(dreamText, entryText string) float64 {
	dreamWords := significantWords(dreamText)
	entryWords := significantWords(entryText)
	if len(dreamWords) == 0 || len(entryWords) == 0 {
		return 0
	}

	entrySet := make(map[string]struct{}, len(entryWords))
	for _, word := range entryWords {
		entrySet[word] = struct{}{}
	}

	overlap := 0
	for _, word := range dreamWords {
		if _, ok := entrySet[word]; ok {
			overlap++
		}
	}

	union := len(dreamWords) + len(entrySet) - overlap
	if union <= 0 {
		return 0
	}
	return clamp01(float64(overlap) / float64(union))
}

// significantWords lowercases text and returns words longer than 3 runes.
// Splitting is on any non-letter, non-digit rune so Turkish suffixed forms
// stay intact.
func significantWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	words := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 3 {
			words = append(words, f)
		}
	}
	return words
}
