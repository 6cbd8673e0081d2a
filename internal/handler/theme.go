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

// ThemeHandler serves themes and the projects grouped under them.
type ThemeHandler struct {
	store  *store.ThemeStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewThemeHandler(s *store.ThemeStore, hub *websocket.Hub, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{store: s, hub: hub, logger: logger}
}

type themeRequest struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	themes, err := h.store.List(auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list themes")
		return
	}
	if themes == nil {
		themes = []model.Theme{}
	}
	writeJSON(w, http.StatusOK, themes)
}

func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	theme, err := h.store.Create(householdID, req.Name, req.Icon, req.Color, req.SortOrder)
	if err != nil {
		h.logger.Error("create theme", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create theme")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("theme", "created", theme.ID, nil))
	writeJSON(w, http.StatusCreated, theme)
}

func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	theme, err := h.store.GetByID(id, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get theme")
		return
	}
	if theme == nil {
		writeError(w, http.StatusNotFound, "theme not found")
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (h *ThemeHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get theme")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "theme not found")
		return
	}

	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	theme, err := h.store.Update(id, householdID, req.Name, req.Icon, req.Color, req.SortOrder)
	if err != nil {
		h.logger.Error("update theme", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update theme")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("theme", "updated", theme.ID, nil))
	writeJSON(w, http.StatusOK, theme)
}

func (h *ThemeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get theme")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "theme not found")
		return
	}

	if err := h.store.Delete(id, householdID); err != nil {
		h.logger.Error("delete theme", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete theme")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("theme", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// --- Projects ---

type projectRequest struct {
	Name    string `json:"name"`
	ThemeID *int64 `json:"theme_id"`
}

func (h *ThemeHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ThemeHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if req.ThemeID != nil {
		theme, err := h.store.GetByID(*req.ThemeID, householdID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create project")
			return
		}
		if theme == nil {
			writeError(w, http.StatusBadRequest, "theme not found")
			return
		}
	}

	project, err := h.store.CreateProject(householdID, req.ThemeID, req.Name)
	if err != nil {
		h.logger.Error("create project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("project", "created", project.ID, nil))
	writeJSON(w, http.StatusCreated, project)
}

func (h *ThemeHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	project, err := h.store.GetProjectByID(id, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ThemeHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetProjectByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if req.ThemeID != nil {
		theme, err := h.store.GetByID(*req.ThemeID, householdID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update project")
			return
		}
		if theme == nil {
			writeError(w, http.StatusBadRequest, "theme not found")
			return
		}
	}

	project, err := h.store.UpdateProject(id, householdID, req.ThemeID, req.Name)
	if err != nil {
		h.logger.Error("update project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("project", "updated", project.ID, nil))
	writeJSON(w, http.StatusOK, project)
}

func (h *ThemeHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetProjectByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	if err := h.store.DeleteProject(id, householdID); err != nil {
		h.logger.Error("delete project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("project", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
