package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// DejavuEntry represents one logged real-world deja vu experience.
// Same lifecycle as DreamRecord: created once, embedding attached later.
type DejavuEntry struct {
	ID             surrealmodels.RecordID `json:"id"`
	Description    string                 `json:"description"`
	Location       string                 `json:"location"`
	Emotion        string                 `json:"emotion"`
	Familiarity    int                    `json:"familiarity"` // 1-10, analogous to dream intensity
	TriggerContext *string                `json:"trigger_context,omitempty"`
	EntryDate      time.Time              `json:"entry_date"`
	Embedding      []float32              `json:"embedding,omitempty"`
	Created        time.Time              `json:"created,omitempty"`
}

// DejavuInput holds the caller-supplied fields for logging a deja vu experience.
type DejavuInput struct {
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Emotion        string    `json:"emotion"`
	Familiarity    int       `json:"familiarity"`
	TriggerContext *string   `json:"trigger_context,omitempty"`
	EntryDate      time.Time `json:"entry_date"`
}

// HasEmbedding reports whether an embedding has been attached.
func (e *DejavuEntry) HasEmbedding() bool {
	return len(e.Embedding) > 0
}
