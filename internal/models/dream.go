package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// DreamRecord represents one logged dream.
// Immutable after creation except for the embedding, which is attached
// (or replaced after a model change) once the embedding provider has run.
type DreamRecord struct {
	ID          surrealmodels.RecordID `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Location    string                 `json:"location"`
	Emotion     string                 `json:"emotion"`
	Intensity   int                    `json:"intensity"` // 1-10
	Themes      []string               `json:"themes,omitempty"`
	Objects     []string               `json:"objects,omitempty"`
	DreamDate   time.Time              `json:"dream_date"`
	Embedding   []float32              `json:"embedding,omitempty"`
	Created     time.Time              `json:"created,omitempty"`
}

// DreamInput holds the caller-supplied fields for logging a dream.
type DreamInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Emotion     string    `json:"emotion"`
	Intensity   int       `json:"intensity"`
	Themes      []string  `json:"themes,omitempty"`
	Objects     []string  `json:"objects,omitempty"`
	DreamDate   time.Time `json:"dream_date"`
}

// HasEmbedding reports whether an embedding has been attached.
func (d *DreamRecord) HasEmbedding() bool {
	return len(d.Embedding) > 0
}
