package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/store"
)

type PreferenceHandler struct {
	store  *store.PreferenceStore
	logger *slog.Logger
}

func NewPreferenceHandler(s *store.PreferenceStore, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{store: s, logger: logger}
}

// Get returns the household's meal planning notes, or null data when none
// have been saved yet.
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	pref, err := h.store.Get(auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": pref})
}

// Put saves the notes as a single atomic upsert.
func (h *PreferenceHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	pref, err := h.store.Upsert(auth.HouseholdID(r.Context()), req.Notes)
	if err != nil {
		h.logger.Error("save preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": pref})
}
