package engine

import (
	"testing"

	"github.com/merfai/merf-go/internal/models"
	"github.com/stretchr/testify/assert"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func dreamWithID(id string) models.DreamRecord {
	return models.DreamRecord{ID: surrealmodels.RecordID{Table: "dream", ID: id}}
}

func TestNoveltySelfOnlyCorpus(t *testing.T) {
	dream := dreamWithID("a")
	dream.Embedding = []float32{1, 0}

	got := Novelty(dream, []models.DreamRecord{dream})
	assert.Equal(t, NeutralNovelty, got, "history of only the dream itself has no signal")
}

func TestNoveltyEmptyCorpus(t *testing.T) {
	dream := dreamWithID("a")
	dream.Embedding = []float32{1, 0}

	assert.Equal(t, NeutralNovelty, Novelty(dream, nil))
}

func TestNoveltyMissingEmbedding(t *testing.T) {
	dream := dreamWithID("a")
	other := dreamWithID("b")
	other.Embedding = []float32{1, 0}

	got := Novelty(dream, []models.DreamRecord{dream, other})
	assert.Equal(t, NeutralNovelty, got, "undefined is 0.5, not zero")
}

func TestNoveltyIdenticalCorpus(t *testing.T) {
	dream := dreamWithID("a")
	dream.Embedding = []float32{1, 0}
	other := dreamWithID("b")
	other.Embedding = []float32{1, 0}

	got := Novelty(dream, []models.DreamRecord{dream, other})
	assert.InDelta(t, 0.0, got, 1e-9, "identical to corpus means zero novelty")
}

func TestNoveltyOrthogonalCorpus(t *testing.T) {
	dream := dreamWithID("a")
	dream.Embedding = []float32{1, 0}
	other := dreamWithID("b")
	other.Embedding = []float32{0, 1}

	got := Novelty(dream, []models.DreamRecord{dream, other})
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestNoveltySkipsUnembeddedEntries(t *testing.T) {
	dream := dreamWithID("a")
	dream.Embedding = []float32{1, 0}
	embedded := dreamWithID("b")
	embedded.Embedding = []float32{1, 0}
	unembedded := dreamWithID("c")

	got := Novelty(dream, []models.DreamRecord{dream, embedded, unembedded})
	assert.InDelta(t, 0.0, got, 1e-9, "unembedded entries must not drag the mean")
}

func TestNoveltyNoComparableEntries(t *testing.T) {
	dream := dreamWithID("a")
	dream.Embedding = []float32{1, 0}
	unembedded := dreamWithID("b")

	got := Novelty(dream, []models.DreamRecord{dream, unembedded})
	assert.Equal(t, NeutralNovelty, got)
}

func TestRepetitionSelfOnlyCorpus(t *testing.T) {
	dream := dreamWithID("a")
	assert.Equal(t, 0.0, Repetition(dream, []models.DreamRecord{dream}))
	assert.Equal(t, 0.0, Repetition(dream, nil))
}

func TestRepetitionAccumulation(t *testing.T) {
	dream := dreamWithID("a")
	dream.Themes = []string{"düşüş"}
	dream.Location = "ev"
	dream.Emotion = "korku"

	full := dreamWithID("b")
	full.Themes = []string{"Düşüş", "su"} // theme match is case-insensitive
	full.Location = "ev"
	full.Emotion = "korku"

	unrelated := dreamWithID("c")
	unrelated.Themes = []string{"uçmak"}
	unrelated.Location = "okul"
	unrelated.Emotion = "huzur"

	// Entry b earns 1 + 0.5 + 0.3, entry c earns 0; normalized by 2.
	got := Repetition(dream, []models.DreamRecord{dream, full, unrelated})
	assert.InDelta(t, 1.8/2, got, 1e-9)
}

func TestRepetitionClamped(t *testing.T) {
	dream := dreamWithID("a")
	dream.Themes = []string{"düşüş"}
	dream.Location = "ev"
	dream.Emotion = "korku"

	history := []models.DreamRecord{dream}
	for i := 0; i < 3; i++ {
		twin := dreamWithID(string(rune('b' + i)))
		twin.Themes = []string{"düşüş"}
		twin.Location = "ev"
		twin.Emotion = "korku"
		history = append(history, twin)
	}

	// Each twin earns 1.8; the normalized sum exceeds 1 and must clamp.
	got := Repetition(dream, history)
	assert.Equal(t, 1.0, got)
}

func TestRepetitionEmptyFieldsNoCredit(t *testing.T) {
	dream := dreamWithID("a")
	other := dreamWithID("b")

	// Both have empty location and emotion: emptiness is not a match.
	got := Repetition(dream, []models.DreamRecord{dream, other})
	assert.Equal(t, 0.0, got)
}
