package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/merfai/merf-go/internal/models"
)

// MinSuggestionScore is the single "is this match worth showing" threshold.
// An earlier iteration of the product used two slightly different values in
// different call sites; this constant is applied uniformly.
const MinSuggestionScore = 0.30

// Strength is the qualitative label for a suggestion's similarity.
type Strength string

const (
	StrengthStrong Strength = "strong"
	StrengthMedium Strength = "medium"
	StrengthWeak   Strength = "weak"
)

// Strength boundaries on the 0-100 similarity scale.
const (
	strengthStrongFloor = 70
	strengthMediumFloor = 50
)

// Suggestion is one ranked dream/deja-vu correspondence. Transient: it
// exists only as the response payload of one query.
type Suggestion struct {
	Rank          int                `json:"rank"`
	Entry         models.DejavuEntry `json:"entry"`
	Similarity    int                `json:"similarity"` // 0-100
	Method        Method             `json:"method"`
	SharedMotifs  []string           `json:"shared_motifs"`
	EmotionMatch  bool               `json:"emotion_match"`
	LocationMatch bool               `json:"location_match"`
	DaysBetween   int                `json:"days_between"`
	Strength      Strength           `json:"strength"`
	Summary       string             `json:"summary"`
}

// Suggest finds which logged deja vu entries a dream most plausibly
// corresponds to. Every candidate is scored with Match, candidates below
// MinSuggestionScore are dropped, the rest are stably sorted by descending
// score and the best topN annotated. Output order is deterministic for a
// fixed corpus slice: no map iteration, stable tie-break on input order.
func Suggest(lex Lexicon, dream models.DreamRecord, corpus []models.DejavuEntry, topN int) []Suggestion {
	if topN <= 0 {
		return []Suggestion{}
	}

	type scored struct {
		entry  models.DejavuEntry
		score  float64
		method Method
	}

	matches := make([]scored, 0, len(corpus))
	for _, entry := range corpus {
		score, method := Match(dream, entry)
		if score < MinSuggestionScore {
			continue
		}
		matches = append(matches, scored{entry: entry, score: score, method: method})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}

	dreamText := ComposeDream(dream)

	suggestions := make([]Suggestion, 0, len(matches))
	for i, m := range matches {
		s := Suggestion{
			Rank:          i + 1,
			Entry:         m.entry,
			Similarity:    int(math.Round(m.score * 100)),
			Method:        m.method,
			SharedMotifs:  lex.SharedMotifs(dreamText, ComposeDejavu(m.entry)),
			EmotionMatch:  dream.Emotion != "" && strings.EqualFold(dream.Emotion, m.entry.Emotion),
			LocationMatch: dream.Location != "" && strings.EqualFold(dream.Location, m.entry.Location),
			DaysBetween:   daysBetween(dream, m.entry),
			Strength:      StrengthForSimilarity(int(math.Round(m.score * 100))),
		}
		s.Summary = summarize(s)
		suggestions = append(suggestions, s)
	}
	return suggestions
}

// StrengthForSimilarity maps a 0-100 similarity to its qualitative label.
func StrengthForSimilarity(similarity int) Strength {
	switch {
	case similarity >= strengthStrongFloor:
		return StrengthStrong
	case similarity >= strengthMediumFloor:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

// daysBetween returns the absolute whole-day gap between the dream's
// calendar date and the entry's calendar date. Time of day is ignored:
// dates logged at midnight and timestamps defaulted to the moment of
// logging must agree on the same gap.
func daysBetween(dream models.DreamRecord, entry models.DejavuEntry) int {
	d := dream.DreamDate.UTC().Truncate(24 * time.Hour)
	e := entry.EntryDate.UTC().Truncate(24 * time.Hour)
	days := int(e.Sub(d).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// summarize builds the short human-readable explanation for one
// suggestion: shared motifs, same-place/same-feeling notes, and a time
// gap phrase for close dates, falling back to a plain percentage sentence
// when no structured signal applies.
func summarize(s Suggestion) string {
	parts := []string{}

	if len(s.SharedMotifs) > 0 {
		parts = append(parts, fmt.Sprintf("shares the %s motif(s)", strings.Join(s.SharedMotifs, ", ")))
	}
	if s.LocationMatch {
		parts = append(parts, "same place")
	}
	if s.EmotionMatch {
		parts = append(parts, "same feeling")
	}
	switch {
	case s.DaysBetween == 0:
		parts = append(parts, "same day")
	case s.DaysBetween <= 7:
		parts = append(parts, fmt.Sprintf("%d days apart", s.DaysBetween))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%d%% similarity match.", s.Similarity)
	}

	return fmt.Sprintf("This dream %s.", strings.Join(parts, ", "))
}
