package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
	"github.com/patchworkhq/hearth/internal/websocket"
)

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type FamilyMemberHandler struct {
	store  *store.FamilyMemberStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewFamilyMemberHandler(s *store.FamilyMemberStore, hub *websocket.Hub, logger *slog.Logger) *FamilyMemberHandler {
	return &FamilyMemberHandler{store: s, hub: hub, logger: logger}
}

func (h *FamilyMemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.List(auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list family members")
		return
	}
	if members == nil {
		members = []model.FamilyMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

type familyMemberRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	AvatarEmoji string `json:"avatar_emoji"`
}

func (h *FamilyMemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req familyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if req.Color == "" {
		req.Color = "#3B82F6"
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeError(w, http.StatusBadRequest, "color must be a hex color (e.g. #FF0000)")
		return
	}

	taken, err := h.store.NameExists(householdID, req.Name, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create family member")
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "a family member with that name already exists")
		return
	}

	member, err := h.store.Create(householdID, req.Name, req.Color, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("create family member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create family member")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("family_member", "created", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

func (h *FamilyMemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	member, err := h.store.GetByID(id, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get family member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "family member not found")
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *FamilyMemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get family member")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "family member not found")
		return
	}

	var req familyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Color == "" {
		req.Color = existing.Color
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeError(w, http.StatusBadRequest, "color must be a hex color (e.g. #FF0000)")
		return
	}

	taken, err := h.store.NameExists(householdID, req.Name, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update family member")
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "a family member with that name already exists")
		return
	}

	member, err := h.store.Update(id, householdID, req.Name, req.Color, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("update family member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update family member")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("family_member", "updated", member.ID, nil))
	writeJSON(w, http.StatusOK, member)
}

func (h *FamilyMemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get family member")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "family member not found")
		return
	}

	if err := h.store.Delete(id, householdID); err != nil {
		h.logger.Error("delete family member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete family member")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("family_member", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *FamilyMemberHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	if err := h.store.UpdateSortOrder(householdID, req.IDs); err != nil {
		h.logger.Error("reorder family members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reorder family members")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("family_member", "reordered", 0, nil))
	w.WriteHeader(http.StatusNoContent)
}
