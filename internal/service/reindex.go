package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/models"
)

// reindexBatchSize is how many records are embedded per provider call.
const reindexBatchSize = 16

// ReindexStore is the persistence surface used by the embedding backfill.
type ReindexStore interface {
	QueryUnembeddedDreams(ctx context.Context) ([]models.DreamRecord, error)
	QueryUnembeddedDejavu(ctx context.Context) ([]models.DejavuEntry, error)
	QuerySetDreamEmbedding(ctx context.Context, id string, embedding []float32) error
	QuerySetDejavuEmbedding(ctx context.Context, id string, embedding []float32) error
}

// ReindexService backfills embeddings for records whose embedding attach
// failed at create time, or after switching embedding models.
type ReindexService struct {
	store    ReindexStore
	embedder Embedder
}

// NewReindexService creates a new reindex service.
func NewReindexService(store ReindexStore, embedder Embedder) *ReindexService {
	return &ReindexService{store: store, embedder: embedder}
}

// ReindexResult summarizes a backfill run.
type ReindexResult struct {
	Dreams int
	Dejavu int
	Errors []string
}

// Total is the number of records that were embedded.
func (r ReindexResult) Total() int {
	return r.Dreams + r.Dejavu
}

// Run embeds all unembedded records in batches. onProgress, if non-nil, is
// called after each record with the running count and the total.
func (s *ReindexService) Run(ctx context.Context, onProgress func(done, total int)) (*ReindexResult, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	dreams, err := s.store.QueryUnembeddedDreams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unembedded dreams: %w", err)
	}
	entries, err := s.store.QueryUnembeddedDejavu(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unembedded dejavu: %w", err)
	}

	total := len(dreams) + len(entries)
	slog.Info("starting embedding backfill", "dreams", len(dreams), "dejavu", len(entries))

	result := &ReindexResult{}
	done := 0
	progress := func() {
		done++
		if onProgress != nil {
			onProgress(done, total)
		}
	}

	for start := 0; start < len(dreams); start += reindexBatchSize {
		end := min(start+reindexBatchSize, len(dreams))
		batch := dreams[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = engine.ComposeDream(d)
		}
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed dream batch: %w", err)
		}

		for i, d := range batch {
			id, err := models.RecordIDString(d.ID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("dream ID: %v", err))
				progress()
				continue
			}
			if err := s.store.QuerySetDreamEmbedding(ctx, id, embeddings[i]); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
				progress()
				continue
			}
			result.Dreams++
			progress()
		}
	}

	for start := 0; start < len(entries); start += reindexBatchSize {
		end := min(start+reindexBatchSize, len(entries))
		batch := entries[start:end]

		texts := make([]string, len(batch))
		for i, e := range batch {
			texts[i] = engine.ComposeDejavu(e)
		}
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed dejavu batch: %w", err)
		}

		for i, e := range batch {
			id, err := models.RecordIDString(e.ID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("dejavu ID: %v", err))
				progress()
				continue
			}
			if err := s.store.QuerySetDejavuEmbedding(ctx, id, embeddings[i]); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
				progress()
				continue
			}
			result.Dejavu++
			progress()
		}
	}

	slog.Info("embedding backfill complete", "dreams", result.Dreams, "dejavu", result.Dejavu, "errors", len(result.Errors))
	return result, nil
}
