package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/merfai/merf-go/internal/db"
	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/metrics"
)

// LikelihoodService scores how likely a dream is to surface as deja vu.
type LikelihoodService struct {
	dreams  DreamStore
	model   NoteWriter
	lexicon engine.Lexicon
	metrics *metrics.Collector
}

// NewLikelihoodService creates a new likelihood service. The model may be
// nil, in which case the result carries the deterministic template note.
func NewLikelihoodService(dreams DreamStore, model NoteWriter, lexicon engine.Lexicon, mc *metrics.Collector) *LikelihoodService {
	return &LikelihoodService{
		dreams:  dreams,
		model:   model,
		lexicon: lexicon,
		metrics: mc,
	}
}

// Score loads a dream and its history and computes the likelihood result.
// With narrative enabled the note is rewritten by the LLM; failures keep
// the template note.
func (s *LikelihoodService) Score(ctx context.Context, dreamID string, narrative bool) (engine.LikelihoodResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordTiming(metrics.OpLikelihood, time.Since(start))
		}
	}()

	dream, err := s.dreams.QueryGetDream(ctx, dreamID)
	if err != nil {
		return engine.LikelihoodResult{}, fmt.Errorf("get dream: %w", err)
	}
	if dream == nil {
		return engine.LikelihoodResult{}, fmt.Errorf("dream %s: %w", dreamID, db.ErrNotFound)
	}

	// History includes the scored dream itself; the novelty computation
	// skips it by record ID.
	history, err := s.dreams.QueryListDreams(ctx, 0)
	if err != nil {
		return engine.LikelihoodResult{}, fmt.Errorf("list dream history: %w", err)
	}

	result := engine.ScoreLikelihood(s.lexicon, *dream, history)

	if narrative && s.model != nil {
		note, err := s.model.LikelihoodNote(ctx, engine.ComposeDream(*dream), result)
		if err != nil {
			slog.Warn("likelihood narrative failed, keeping template note", "dream", dreamID, "error", err)
		} else {
			result.Note = note
		}
	}

	return result, nil
}
