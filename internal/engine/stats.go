package engine

import (
	"strings"

	"github.com/merfai/merf-go/internal/models"
)

// NeutralNovelty is the documented default when novelty is undefined:
// a corpus of at most the dream itself, or a dream with no embedding.
// 0.5 means "no signal", distinct from 0 which means "nothing alike".
const NeutralNovelty = 0.5

// Novelty measures how unlike the rest of the user's dream corpus a dream
// is: 1 minus the mean cosine similarity against every other entry,
// clamped to [0,1]. History entries without embeddings are skipped; if
// nothing is comparable the neutral default applies.
func Novelty(dream models.DreamRecord, history []models.DreamRecord) float64 {
	if len(history) <= 1 || !dream.HasEmbedding() {
		return NeutralNovelty
	}

	var total float64
	compared := 0
	for _, other := range history {
		if other.ID == dream.ID || !other.HasEmbedding() {
			continue
		}
		total += Cosine(dream.Embedding, other.Embedding)
		compared++
	}

	if compared == 0 {
		return NeutralNovelty
	}
	return clamp01(1 - total/float64(compared))
}

// Repetition accumulation weights: a shared theme is the strongest
// recurrence signal, location and emotion recur more incidentally.
const (
	repetitionThemeWeight    = 1.0
	repetitionLocationWeight = 0.5
	repetitionEmotionWeight  = 0.3
)

// Repetition measures how much a dream's surface features recur across
// the corpus. For every other entry it accumulates the weights above,
// then normalizes by the number of other entries, clamped to [0,1].
// A corpus of at most the dream itself yields 0: nothing to recur in.
func Repetition(dream models.DreamRecord, history []models.DreamRecord) float64 {
	if len(history) <= 1 {
		return 0
	}

	dreamThemes := lowerSet(dream.Themes)

	var total float64
	others := 0
	for _, other := range history {
		if other.ID == dream.ID {
			continue
		}
		others++

		if sharesTheme(dreamThemes, other.Themes) {
			total += repetitionThemeWeight
		}
		if dream.Location != "" && strings.EqualFold(dream.Location, other.Location) {
			total += repetitionLocationWeight
		}
		if dream.Emotion != "" && strings.EqualFold(dream.Emotion, other.Emotion) {
			total += repetitionEmotionWeight
		}
	}

	if others == 0 {
		return 0
	}
	return clamp01(total / float64(others))
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func sharesTheme(themes map[string]struct{}, others []string) bool {
	for _, theme := range others {
		if _, ok := themes[strings.ToLower(strings.TrimSpace(theme))]; ok {
			return true
		}
	}
	return false
}
