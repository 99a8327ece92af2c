package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/merfai/merf-go/internal/db"
	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/models"
	"github.com/merfai/merf-go/internal/service"
)

type DreamHandler struct {
	dreams     *service.DreamService
	suggest    *service.SuggestionService
	likelihood *service.LikelihoodService
}

func NewDreamHandler(dreams *service.DreamService, suggest *service.SuggestionService, likelihood *service.LikelihoodService) *DreamHandler {
	return &DreamHandler{dreams: dreams, suggest: suggest, likelihood: likelihood}
}

type dreamResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Emotion     string    `json:"emotion"`
	Intensity   int       `json:"intensity"`
	Themes      []string  `json:"themes,omitempty"`
	Objects     []string  `json:"objects,omitempty"`
	DreamDate   time.Time `json:"dream_date"`
	Embedded    bool      `json:"embedded"`
}

func toDreamResponse(d models.DreamRecord) dreamResponse {
	id, _ := models.RecordIDString(d.ID)
	return dreamResponse{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Emotion:     d.Emotion,
		Intensity:   d.Intensity,
		Themes:      d.Themes,
		Objects:     d.Objects,
		DreamDate:   d.DreamDate,
		Embedded:    d.HasEmbedding(),
	}
}

// Create handles POST /api/dreams.
func (h *DreamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.DreamInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if input.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if input.Intensity < 1 || input.Intensity > 10 {
		writeError(w, http.StatusBadRequest, "intensity must be between 1 and 10")
		return
	}
	if input.DreamDate.IsZero() {
		input.DreamDate = time.Now().UTC()
	}

	dream, err := h.dreams.Create(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toDreamResponse(*dream))
}

// List handles GET /api/dreams.
func (h *DreamHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	dreams, err := h.dreams.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]dreamResponse, 0, len(dreams))
	for _, d := range dreams {
		out = append(out, toDreamResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/dreams/{id}.
func (h *DreamHandler) Get(w http.ResponseWriter, r *http.Request) {
	dream, err := h.dreams.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "dream not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toDreamResponse(*dream))
}

// Delete handles DELETE /api/dreams/{id}.
func (h *DreamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.dreams.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/dreams/search?q=.
func (h *DreamHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	dreams, err := h.dreams.Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]dreamResponse, 0, len(dreams))
	for _, d := range dreams {
		out = append(out, toDreamResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

type suggestRequest struct {
	TopN      int  `json:"top_n"`
	Narrative bool `json:"narrative"`
}

type suggestionResponse struct {
	Rank          int             `json:"rank"`
	Entry         dejavuResponse  `json:"entry"`
	Similarity    int             `json:"similarity"`
	Method        engine.Method   `json:"method"`
	SharedMotifs  []string        `json:"shared_motifs,omitempty"`
	EmotionMatch  bool            `json:"emotion_match"`
	LocationMatch bool            `json:"location_match"`
	DaysBetween   int             `json:"days_between"`
	Strength      engine.Strength `json:"strength"`
	Summary       string          `json:"summary"`
}

// Suggestions handles POST /api/dreams/{id}/suggestions.
func (h *DreamHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	if req.TopN < 0 {
		writeError(w, http.StatusBadRequest, "top_n must not be negative")
		return
	}

	suggestions, err := h.suggest.Suggest(r.Context(), chi.URLParam(r, "id"), service.SuggestOptions{
		TopN:      req.TopN,
		Narrative: req.Narrative,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "dream not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]suggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, suggestionResponse{
			Rank:          s.Rank,
			Entry:         toDejavuResponse(s.Entry),
			Similarity:    s.Similarity,
			Method:        s.Method,
			SharedMotifs:  s.SharedMotifs,
			EmotionMatch:  s.EmotionMatch,
			LocationMatch: s.LocationMatch,
			DaysBetween:   s.DaysBetween,
			Strength:      s.Strength,
			Summary:       s.Summary,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type likelihoodRequest struct {
	Narrative bool `json:"narrative"`
}

// Likelihood handles POST /api/dreams/{id}/likelihood.
func (h *DreamHandler) Likelihood(w http.ResponseWriter, r *http.Request) {
	var req likelihoodRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	result, err := h.likelihood.Score(r.Context(), chi.URLParam(r, "id"), req.Narrative)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "dream not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
