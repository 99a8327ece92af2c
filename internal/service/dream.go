// Package service wires the scoring engine to storage and the embedding
// provider. Services are failure-tolerant around embeddings: a record is
// never lost because the provider was down, it is stored unembedded and
// picked up by the next reindex.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/merfai/merf-go/internal/db"
	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/models"
)

// Embedder produces embedding vectors for composed record text.
// *llm.Embedder satisfies it; tests substitute a fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// DreamStore is the dream persistence surface used by services.
type DreamStore interface {
	QueryCreateDream(ctx context.Context, input models.DreamInput) (*models.DreamRecord, error)
	QueryGetDream(ctx context.Context, id string) (*models.DreamRecord, error)
	QueryListDreams(ctx context.Context, limit int) ([]models.DreamRecord, error)
	QuerySetDreamEmbedding(ctx context.Context, id string, embedding []float32) error
	QueryDeleteDream(ctx context.Context, id string) error
	QuerySearchDreams(ctx context.Context, query string, limit int) ([]models.DreamRecord, error)
}

// DreamService handles dream record lifecycle.
type DreamService struct {
	store    DreamStore
	embedder Embedder
}

// NewDreamService creates a new dream service. The embedder may be nil,
// in which case records are stored unembedded.
func NewDreamService(store DreamStore, embedder Embedder) *DreamService {
	return &DreamService{store: store, embedder: embedder}
}

// Create stores a new dream and attaches its embedding. Embedding failures
// do not fail the create: the record stays unembedded and is logged.
func (s *DreamService) Create(ctx context.Context, input models.DreamInput) (*models.DreamRecord, error) {
	dream, err := s.store.QueryCreateDream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create dream: %w", err)
	}

	if s.embedder == nil {
		return dream, nil
	}

	id, err := models.RecordIDString(dream.ID)
	if err != nil {
		return nil, fmt.Errorf("dream ID: %w", err)
	}

	embedding, err := s.embedder.Embed(ctx, engine.ComposeDream(*dream))
	if err != nil {
		slog.Warn("dream embedding failed, record stored unembedded", "dream", id, "error", err)
		return dream, nil
	}
	if err := s.store.QuerySetDreamEmbedding(ctx, id, embedding); err != nil {
		slog.Warn("failed to store dream embedding", "dream", id, "error", err)
		return dream, nil
	}
	dream.Embedding = embedding
	return dream, nil
}

// Get fetches a single dream. Returns db.ErrNotFound when it does not exist.
func (s *DreamService) Get(ctx context.Context, id string) (*models.DreamRecord, error) {
	dream, err := s.store.QueryGetDream(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get dream: %w", err)
	}
	if dream == nil {
		return nil, fmt.Errorf("dream %s: %w", id, db.ErrNotFound)
	}
	return dream, nil
}

// List returns dreams ordered newest first. Limit 0 means all.
func (s *DreamService) List(ctx context.Context, limit int) ([]models.DreamRecord, error) {
	return s.store.QueryListDreams(ctx, limit)
}

// Delete removes a dream record.
func (s *DreamService) Delete(ctx context.Context, id string) error {
	return s.store.QueryDeleteDream(ctx, id)
}

// Search runs a fulltext search over dream descriptions.
func (s *DreamService) Search(ctx context.Context, query string, limit int) ([]models.DreamRecord, error) {
	return s.store.QuerySearchDreams(ctx, query, limit)
}
