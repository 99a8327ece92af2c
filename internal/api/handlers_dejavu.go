package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/merfai/merf-go/internal/db"
	"github.com/merfai/merf-go/internal/models"
	"github.com/merfai/merf-go/internal/service"
)

type DejavuHandler struct {
	entries *service.DejavuService
}

func NewDejavuHandler(entries *service.DejavuService) *DejavuHandler {
	return &DejavuHandler{entries: entries}
}

type dejavuResponse struct {
	ID             string    `json:"id"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Emotion        string    `json:"emotion"`
	Familiarity    int       `json:"familiarity"`
	TriggerContext *string   `json:"trigger_context,omitempty"`
	EntryDate      time.Time `json:"entry_date"`
	Embedded       bool      `json:"embedded"`
}

func toDejavuResponse(e models.DejavuEntry) dejavuResponse {
	id, _ := models.RecordIDString(e.ID)
	return dejavuResponse{
		ID:             id,
		Description:    e.Description,
		Location:       e.Location,
		Emotion:        e.Emotion,
		Familiarity:    e.Familiarity,
		TriggerContext: e.TriggerContext,
		EntryDate:      e.EntryDate,
		Embedded:       e.HasEmbedding(),
	}
}

// Create handles POST /api/dejavu.
func (h *DejavuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.DejavuInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if input.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if input.Familiarity < 1 || input.Familiarity > 10 {
		writeError(w, http.StatusBadRequest, "familiarity must be between 1 and 10")
		return
	}
	if input.EntryDate.IsZero() {
		input.EntryDate = time.Now().UTC()
	}

	entry, err := h.entries.Create(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toDejavuResponse(*entry))
}

// List handles GET /api/dejavu.
func (h *DejavuHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.entries.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]dejavuResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDejavuResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/dejavu/{id}.
func (h *DejavuHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entries.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "dejavu entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toDejavuResponse(*entry))
}

// Delete handles DELETE /api/dejavu/{id}.
func (h *DejavuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.entries.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
