package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
	"github.com/patchworkhq/hearth/internal/websocket"
)

type RecipeHandler struct {
	store  *store.RecipeStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewRecipeHandler(s *store.RecipeStore, hub *websocket.Hub, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{store: s, hub: hub, logger: logger}
}

type recipeRequest struct {
	Title       string                   `json:"title"`
	Source      string                   `json:"source"`
	PrepMinutes int                      `json:"prep_minutes"`
	CookMinutes int                      `json:"cook_minutes"`
	Servings    int                      `json:"servings"`
	Ingredients []model.RecipeIngredient `json:"ingredients"`
	Steps       []model.RecipeStep       `json:"steps"`
	Tags        []string                 `json:"tags"`
}

func (r recipeRequest) params() store.RecipeParams {
	return store.RecipeParams{
		Title:       r.Title,
		Source:      r.Source,
		PrepMinutes: r.PrepMinutes,
		CookMinutes: r.CookMinutes,
		Servings:    r.Servings,
		Ingredients: r.Ingredients,
		Steps:       r.Steps,
		Tags:        r.Tags,
	}
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var (
		recipes []model.Recipe
		err     error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		recipes, err = h.store.Search(householdID, q)
	} else {
		recipes, err = h.store.List(householdID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	switch req.Source {
	case "", model.SourceManual, model.SourceImported, model.SourceAssistant:
	default:
		writeError(w, http.StatusBadRequest, "invalid source")
		return
	}

	recipe, err := h.store.Create(householdID, req.params())
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("recipe", "created", recipe.ID, nil))
	writeJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	recipe, err := h.store.GetByID(id, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	recipe, err := h.store.Update(id, householdID, req.params())
	if err != nil {
		h.logger.Error("update recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("recipe", "updated", recipe.ID, nil))
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	if err := h.store.Delete(id, householdID); err != nil {
		h.logger.Error("delete recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("recipe", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	var req struct {
		URL  string `json:"url"`
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	att, err := h.store.AddAttachment(id, req.URL, req.Kind)
	if err != nil {
		h.logger.Error("add attachment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add attachment")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("recipe", "updated", id, nil))
	writeJSON(w, http.StatusCreated, att)
}

func (h *RecipeHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	attachmentID := r.PathValue("attachment_id")
	if attachmentID == "" {
		writeError(w, http.StatusBadRequest, "invalid attachment_id")
		return
	}

	if err := h.store.DeleteAttachment(attachmentID, id); err != nil {
		h.logger.Error("delete attachment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete attachment")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("recipe", "updated", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
