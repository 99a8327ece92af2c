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

// NoteWriter rewrites deterministic engine summaries into narrative prose.
// *llm.Model satisfies it; tests substitute a fake.
type NoteWriter interface {
	LikelihoodNote(ctx context.Context, dreamText string, result engine.LikelihoodResult) (string, error)
	SuggestionNote(ctx context.Context, dreamText, entryText string, s engine.Suggestion) (string, error)
}

// SuggestionService matches dreams against the deja vu corpus.
type SuggestionService struct {
	dreams  DreamStore
	entries DejavuStore
	model   NoteWriter
	lexicon engine.Lexicon
	metrics *metrics.Collector
}

// NewSuggestionService creates a new suggestion service. The model may be
// nil, in which case suggestions carry the deterministic template summary.
func NewSuggestionService(dreams DreamStore, entries DejavuStore, model NoteWriter, lexicon engine.Lexicon, mc *metrics.Collector) *SuggestionService {
	return &SuggestionService{
		dreams:  dreams,
		entries: entries,
		model:   model,
		lexicon: lexicon,
		metrics: mc,
	}
}

// SuggestOptions configures a suggestion run.
type SuggestOptions struct {
	// TopN caps the number of returned suggestions (default 5).
	TopN int
	// Narrative asks the LLM to rewrite each summary. Failures fall back
	// to the template summary.
	Narrative bool
}

// Suggest loads a dream and ranks the deja vu corpus against it.
func (s *SuggestionService) Suggest(ctx context.Context, dreamID string, opts SuggestOptions) ([]engine.Suggestion, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordTiming(metrics.OpSuggest, time.Since(start))
		}
	}()

	dream, err := s.dreams.QueryGetDream(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("get dream: %w", err)
	}
	if dream == nil {
		return nil, fmt.Errorf("dream %s: %w", dreamID, db.ErrNotFound)
	}

	corpus, err := s.entries.QueryListDejavu(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list dejavu corpus: %w", err)
	}

	topN := opts.TopN
	if topN == 0 {
		topN = 5
	}

	suggestions := engine.Suggest(s.lexicon, *dream, corpus, topN)

	if opts.Narrative && s.model != nil {
		dreamText := engine.ComposeDream(*dream)
		for i, sug := range suggestions {
			note, err := s.model.SuggestionNote(ctx, dreamText, engine.ComposeDejavu(sug.Entry), sug)
			if err != nil {
				slog.Warn("suggestion narrative failed, keeping template summary", "dream", dreamID, "rank", sug.Rank, "error", err)
				continue
			}
			suggestions[i].Summary = note
		}
	}

	return suggestions, nil
}
