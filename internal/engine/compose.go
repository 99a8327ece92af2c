// Package engine implements the dream / deja vu matching and scoring core.
//
// Everything in this package is pure and deterministic: functions receive
// the full corpus they need as read-only snapshots and return fresh results
// with no side effects. Provider I/O (embeddings, narrative text) lives in
// the service layer; the engine only consumes already-fetched vectors.
package engine

import (
	"strings"

	"github.com/merfai/merf-go/internal/models"
)

const fieldSeparator = " | "
const listSeparator = ", "

// ComposeDream serializes a dream's fields into one canonical string.
// The output is byte-identical for identical input: it is both the
// embedding input and the embedding cache key. Field order is fixed
// (title, description, location, emotion, themes, objects) and absent
// optional fields are omitted entirely, never replaced by placeholders.
func ComposeDream(d models.DreamRecord) string {
	parts := make([]string, 0, 6)
	parts = appendField(parts, "Title", d.Title)
	parts = appendField(parts, "Description", d.Description)
	parts = appendField(parts, "Location", d.Location)
	parts = appendField(parts, "Emotion", d.Emotion)
	parts = appendField(parts, "Themes", strings.Join(d.Themes, listSeparator))
	parts = appendField(parts, "Objects", strings.Join(d.Objects, listSeparator))
	return strings.Join(parts, fieldSeparator)
}

// ComposeDejavu serializes a deja vu entry's fields into one canonical string.
// Same determinism contract as ComposeDream.
func ComposeDejavu(e models.DejavuEntry) string {
	parts := make([]string, 0, 4)
	parts = appendField(parts, "Description", e.Description)
	parts = appendField(parts, "Location", e.Location)
	parts = appendField(parts, "Emotion", e.Emotion)
	if e.TriggerContext != nil {
		parts = appendField(parts, "Trigger", *e.TriggerContext)
	}
	return strings.Join(parts, fieldSeparator)
}

func appendField(parts []string, label, value string) []string {
	if value == "" {
		return parts
	}
	return append(parts, label+": "+value)
}
