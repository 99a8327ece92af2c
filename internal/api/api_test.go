package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/metrics"
	"github.com/merfai/merf-go/internal/models"
	"github.com/merfai/merf-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// memStore is an in-memory store backing the handler tests.
type memStore struct {
	dreams  map[string]*models.DreamRecord
	entries map[string]*models.DejavuEntry
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{
		dreams:  map[string]*models.DreamRecord{},
		entries: map[string]*models.DejavuEntry{},
	}
}

func (m *memStore) QueryCreateDream(_ context.Context, input models.DreamInput) (*models.DreamRecord, error) {
	m.nextID++
	id := fmt.Sprintf("d%d", m.nextID)
	dream := &models.DreamRecord{
		ID:          surrealmodels.RecordID{Table: "dream", ID: id},
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Emotion:     input.Emotion,
		Intensity:   input.Intensity,
		Themes:      input.Themes,
		Objects:     input.Objects,
		DreamDate:   input.DreamDate,
	}
	m.dreams[id] = dream
	copied := *dream
	return &copied, nil
}

func (m *memStore) QueryGetDream(_ context.Context, id string) (*models.DreamRecord, error) {
	dream, ok := m.dreams[id]
	if !ok {
		return nil, nil
	}
	copied := *dream
	return &copied, nil
}

func (m *memStore) QueryListDreams(_ context.Context, limit int) ([]models.DreamRecord, error) {
	out := make([]models.DreamRecord, 0, len(m.dreams))
	for _, d := range m.dreams {
		out = append(out, *d)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) QuerySetDreamEmbedding(_ context.Context, id string, embedding []float32) error {
	m.dreams[id].Embedding = embedding
	return nil
}

func (m *memStore) QueryDeleteDream(_ context.Context, id string) error {
	delete(m.dreams, id)
	return nil
}

func (m *memStore) QuerySearchDreams(_ context.Context, _ string, _ int) ([]models.DreamRecord, error) {
	return nil, nil
}

func (m *memStore) QueryCreateDejavu(_ context.Context, input models.DejavuInput) (*models.DejavuEntry, error) {
	m.nextID++
	id := fmt.Sprintf("e%d", m.nextID)
	entry := &models.DejavuEntry{
		ID:             surrealmodels.RecordID{Table: "dejavu", ID: id},
		Description:    input.Description,
		Location:       input.Location,
		Emotion:        input.Emotion,
		Familiarity:    input.Familiarity,
		TriggerContext: input.TriggerContext,
		EntryDate:      input.EntryDate,
	}
	m.entries[id] = entry
	copied := *entry
	return &copied, nil
}

func (m *memStore) QueryGetDejavu(_ context.Context, id string) (*models.DejavuEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (m *memStore) QueryListDejavu(_ context.Context, limit int) ([]models.DejavuEntry, error) {
	out := make([]models.DejavuEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) QuerySetDejavuEmbedding(_ context.Context, id string, embedding []float32) error {
	m.entries[id].Embedding = embedding
	return nil
}

func (m *memStore) QueryDeleteDejavu(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	store := newMemStore()
	mc := metrics.NewCollector()
	lexicon := engine.DefaultLexicon()

	dreams := service.NewDreamService(store, nil)
	entries := service.NewDejavuService(store, nil)
	suggest := service.NewSuggestionService(store, store, nil, lexicon, mc)
	likelihood := service.NewLikelihoodService(store, nil, lexicon, mc)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(dreams, entries, suggest, likelihood, mc, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateDream(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/dreams", models.DreamInput{
		Title:       "Düşüş",
		Description: "Yüksek bir binadan düşüyordum",
		Location:    "ev",
		Emotion:     "korku",
		Intensity:   8,
		DreamDate:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dream := decodeBody[dreamResponse](t, resp)
	assert.NotEmpty(t, dream.ID)
	assert.Equal(t, "Düşüş", dream.Title)
	assert.False(t, dream.Embedded)
}

func TestCreateDreamValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name  string
		input models.DreamInput
	}{
		{"missing description", models.DreamInput{Intensity: 5}},
		{"intensity too low", models.DreamInput{Description: "x", Intensity: 0}},
		{"intensity too high", models.DreamInput{Description: "x", Intensity: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/dreams", tt.input)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetDreamNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/dreams/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteDream(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/dreams", models.DreamInput{Description: "x", Intensity: 5})
	dream := decodeBody[dreamResponse](t, resp)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/dreams/"+dream.ID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	get, err := http.Get(srv.URL + "/api/dreams/" + dream.ID)
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusNotFound, get.StatusCode)
}

func TestCreateAndListDejavu(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/dejavu", models.DejavuInput{
		Description: "Tanıdık bir koridor",
		Location:    "okul",
		Emotion:     "şaşkınlık",
		Familiarity: 6,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decodeBody[dejavuResponse](t, resp)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.EntryDate.IsZero(), "entry date defaults to now")

	list, err := http.Get(srv.URL + "/api/dejavu")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, list.StatusCode)
	entries := decodeBody[[]dejavuResponse](t, list)
	assert.Len(t, entries, 1)
}

func TestCreateDejavuValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/dejavu", models.DejavuInput{Description: "x", Familiarity: 0})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSuggestionsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	dream, err := store.QueryCreateDream(ctx, models.DreamInput{
		Title:       "Düşüş",
		Description: "Merdivenlerden düşüş yaşadım",
		Location:    "ev",
		Emotion:     "korku",
		Intensity:   7,
		DreamDate:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	dreamID := models.MustRecordIDString(dream.ID)
	require.NoError(t, store.QuerySetDreamEmbedding(ctx, dreamID, []float32{1, 0}))

	entry, err := store.QueryCreateDejavu(ctx, models.DejavuInput{
		Description: "Merdivenlerde düşüş hissi",
		Location:    "ev",
		Emotion:     "korku",
		Familiarity: 8,
		EntryDate:   time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, store.QuerySetDejavuEmbedding(ctx,
		models.MustRecordIDString(entry.ID), []float32{0.9, 0.1}))

	resp := postJSON(t, srv.URL+"/api/dreams/"+dreamID+"/suggestions", suggestRequest{TopN: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	suggestions := decodeBody[[]suggestionResponse](t, resp)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 1, suggestions[0].Rank)
	assert.True(t, suggestions[0].LocationMatch)
	assert.True(t, suggestions[0].EmotionMatch)
	assert.Contains(t, suggestions[0].SharedMotifs, "falling")
	assert.NotEmpty(t, suggestions[0].Summary)
}

func TestSuggestionsDreamNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/dreams/missing/suggestions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLikelihoodEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	dream, err := store.QueryCreateDream(ctx, models.DreamInput{
		Title:       "Düşüş",
		Description: "Uçurumdan düşüyordum",
		Emotion:     "korku",
		Intensity:   9,
		DreamDate:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	dreamID := models.MustRecordIDString(dream.ID)

	resp, err := http.Post(srv.URL+"/api/dreams/"+dreamID+"/likelihood", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[engine.LikelihoodResult](t, resp)
	assert.GreaterOrEqual(t, result.Score, 0)
	assert.LessOrEqual(t, result.Score, 100)
	assert.Equal(t, engine.BandForScore(result.Score), result.Band)
	assert.NotEmpty(t, result.Motifs)
	assert.NotEmpty(t, result.Note)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	health := decodeBody[healthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// Exercise an operation so the snapshot has content.
	resp, err := http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
