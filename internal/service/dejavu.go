package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/merfai/merf-go/internal/db"
	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/models"
)

// DejavuStore is the deja vu persistence surface used by services.
type DejavuStore interface {
	QueryCreateDejavu(ctx context.Context, input models.DejavuInput) (*models.DejavuEntry, error)
	QueryGetDejavu(ctx context.Context, id string) (*models.DejavuEntry, error)
	QueryListDejavu(ctx context.Context, limit int) ([]models.DejavuEntry, error)
	QuerySetDejavuEmbedding(ctx context.Context, id string, embedding []float32) error
	QueryDeleteDejavu(ctx context.Context, id string) error
}

// DejavuService handles deja vu entry lifecycle.
type DejavuService struct {
	store    DejavuStore
	embedder Embedder
}

// NewDejavuService creates a new deja vu service. The embedder may be nil.
func NewDejavuService(store DejavuStore, embedder Embedder) *DejavuService {
	return &DejavuService{store: store, embedder: embedder}
}

// Create stores a new deja vu entry and attaches its embedding. Embedding
// failures do not fail the create.
func (s *DejavuService) Create(ctx context.Context, input models.DejavuInput) (*models.DejavuEntry, error) {
	entry, err := s.store.QueryCreateDejavu(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create dejavu: %w", err)
	}

	if s.embedder == nil {
		return entry, nil
	}

	id, err := models.RecordIDString(entry.ID)
	if err != nil {
		return nil, fmt.Errorf("dejavu ID: %w", err)
	}

	embedding, err := s.embedder.Embed(ctx, engine.ComposeDejavu(*entry))
	if err != nil {
		slog.Warn("dejavu embedding failed, record stored unembedded", "entry", id, "error", err)
		return entry, nil
	}
	if err := s.store.QuerySetDejavuEmbedding(ctx, id, embedding); err != nil {
		slog.Warn("failed to store dejavu embedding", "entry", id, "error", err)
		return entry, nil
	}
	entry.Embedding = embedding
	return entry, nil
}

// Get fetches a single entry. Returns db.ErrNotFound when it does not exist.
func (s *DejavuService) Get(ctx context.Context, id string) (*models.DejavuEntry, error) {
	entry, err := s.store.QueryGetDejavu(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get dejavu: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("dejavu %s: %w", id, db.ErrNotFound)
	}
	return entry, nil
}

// List returns entries ordered newest first. Limit 0 means all.
func (s *DejavuService) List(ctx context.Context, limit int) ([]models.DejavuEntry, error) {
	return s.store.QueryListDejavu(ctx, limit)
}

// Delete removes a deja vu entry.
func (s *DejavuService) Delete(ctx context.Context, id string) error {
	return s.store.QueryDeleteDejavu(ctx, id)
}
