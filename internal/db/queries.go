// Package db provides SurrealDB query functions for dream and deja vu records.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merfai/merf-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// QueryCreateDream inserts a new dream record with a fresh UUID.
// The embedding starts empty; it is attached separately once computed.
func (c *Client) QueryCreateDream(ctx context.Context, input models.DreamInput) (*models.DreamRecord, error) {
	defer c.recordTiming(time.Now())

	sql := `
		CREATE type::record("dream", $id) SET
			title = $title,
			description = $description,
			location = $location,
			emotion = $emotion,
			intensity = $intensity,
			themes = $themes,
			objects = $objects,
			dream_date = type::datetime($dream_date),
			embedding = []
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.DreamRecord](ctx, c.db, sql, map[string]any{
		"id":          uuid.NewString(),
		"title":       input.Title,
		"description": input.Description,
		"location":    input.Location,
		"emotion":     input.Emotion,
		"intensity":   input.Intensity,
		"themes":      emptyIfNil(input.Themes),
		"objects":     emptyIfNil(input.Objects),
		"dream_date":  input.DreamDate.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("create dream: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create dream: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetDream retrieves a dream by ID. Returns nil if not found.
func (c *Client) QueryGetDream(ctx context.Context, id string) (*models.DreamRecord, error) {
	defer c.recordTiming(time.Now())

	results, err := surrealdb.Query[[]models.DreamRecord](ctx, c.db, `
		SELECT * FROM type::record("dream", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get dream: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// QueryListDreams returns dreams ordered by dream date, newest first.
// A limit of 0 returns everything: corpora are small enough to score
// in memory, which is what the engine expects.
func (c *Client) QueryListDreams(ctx context.Context, limit int) ([]models.DreamRecord, error) {
	defer c.recordTiming(time.Now())

	sql := `SELECT * FROM dream ORDER BY dream_date DESC`
	vars := map[string]any{}
	if limit > 0 {
		sql += ` LIMIT $limit`
		vars["limit"] = limit
	}

	results, err := surrealdb.Query[[]models.DreamRecord](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.DreamRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QuerySetDreamEmbedding attaches (or replaces) a dream's embedding.
// This is the only mutation a dream sees after creation.
func (c *Client) QuerySetDreamEmbedding(ctx context.Context, id string, embedding []float32) error {
	defer c.recordTiming(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("dream", $id) SET embedding = $embedding
	`, map[string]any{"id": id, "embedding": embedding})
	if err != nil {
		return fmt.Errorf("set dream embedding: %w", err)
	}
	return nil
}

// QueryDeleteDream deletes a dream by ID.
func (c *Client) QueryDeleteDream(ctx context.Context, id string) error {
	defer c.recordTiming(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE type::record("dream", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete dream: %w", err)
	}
	return nil
}

// QueryCreateDejavu inserts a new deja vu entry with a fresh UUID.
func (c *Client) QueryCreateDejavu(ctx context.Context, input models.DejavuInput) (*models.DejavuEntry, error) {
	defer c.recordTiming(time.Now())

	sql := `
		CREATE type::record("dejavu", $id) SET
			description = $description,
			location = $location,
			emotion = $emotion,
			familiarity = $familiarity,
			trigger_context = $trigger_context,
			entry_date = type::datetime($entry_date),
			embedding = []
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.DejavuEntry](ctx, c.db, sql, map[string]any{
		"id":              uuid.NewString(),
		"description":     input.Description,
		"location":        input.Location,
		"emotion":         input.Emotion,
		"familiarity":     input.Familiarity,
		"trigger_context": input.TriggerContext,
		"entry_date":      input.EntryDate.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("create dejavu: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create dejavu: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetDejavu retrieves a deja vu entry by ID. Returns nil if not found.
func (c *Client) QueryGetDejavu(ctx context.Context, id string) (*models.DejavuEntry, error) {
	defer c.recordTiming(time.Now())

	results, err := surrealdb.Query[[]models.DejavuEntry](ctx, c.db, `
		SELECT * FROM type::record("dejavu", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get dejavu: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// QueryListDejavu returns deja vu entries ordered by entry date, newest
// first. A limit of 0 returns everything.
func (c *Client) QueryListDejavu(ctx context.Context, limit int) ([]models.DejavuEntry, error) {
	defer c.recordTiming(time.Now())

	sql := `SELECT * FROM dejavu ORDER BY entry_date DESC`
	vars := map[string]any{}
	if limit > 0 {
		sql += ` LIMIT $limit`
		vars["limit"] = limit
	}

	results, err := surrealdb.Query[[]models.DejavuEntry](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list dejavu: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.DejavuEntry{}, nil
	}
	return (*results)[0].Result, nil
}

// QuerySetDejavuEmbedding attaches (or replaces) an entry's embedding.
func (c *Client) QuerySetDejavuEmbedding(ctx context.Context, id string, embedding []float32) error {
	defer c.recordTiming(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("dejavu", $id) SET embedding = $embedding
	`, map[string]any{"id": id, "embedding": embedding})
	if err != nil {
		return fmt.Errorf("set dejavu embedding: %w", err)
	}
	return nil
}

// QueryDeleteDejavu deletes a deja vu entry by ID.
func (c *Client) QueryDeleteDejavu(ctx context.Context, id string) error {
	defer c.recordTiming(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE type::record("dejavu", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete dejavu: %w", err)
	}
	return nil
}

// QueryUnembeddedDreams returns dreams whose embedding is still empty,
// oldest first, for backfill.
func (c *Client) QueryUnembeddedDreams(ctx context.Context) ([]models.DreamRecord, error) {
	defer c.recordTiming(time.Now())

	results, err := surrealdb.Query[[]models.DreamRecord](ctx, c.db, `
		SELECT * FROM dream WHERE array::len(embedding) = 0 ORDER BY created ASC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("unembedded dreams: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.DreamRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryUnembeddedDejavu returns deja vu entries whose embedding is still
// empty, oldest first, for backfill.
func (c *Client) QueryUnembeddedDejavu(ctx context.Context) ([]models.DejavuEntry, error) {
	defer c.recordTiming(time.Now())

	results, err := surrealdb.Query[[]models.DejavuEntry](ctx, c.db, `
		SELECT * FROM dejavu WHERE array::len(embedding) = 0 ORDER BY created ASC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("unembedded dejavu: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.DejavuEntry{}, nil
	}
	return (*results)[0].Result, nil
}

// QuerySearchDreams runs a BM25 fulltext search over dream descriptions.
func (c *Client) QuerySearchDreams(ctx context.Context, query string, limit int) ([]models.DreamRecord, error) {
	defer c.recordTiming(time.Now())

	if limit <= 0 {
		limit = 20
	}

	results, err := surrealdb.Query[[]models.DreamRecord](ctx, c.db, `
		SELECT * FROM dream WHERE description @0@ $q LIMIT $limit
	`, map[string]any{"q": query, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("search dreams: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.DreamRecord{}, nil
	}
	return (*results)[0].Result, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
