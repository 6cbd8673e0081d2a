package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
	"github.com/patchworkhq/hearth/internal/websocket"
)

type ListHandler struct {
	store  *store.ListStore
	users  *store.UserStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewListHandler(s *store.ListStore, users *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *ListHandler {
	return &ListHandler{store: s, users: users, hub: hub, logger: logger}
}

func parseListIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("list_id"), 10, 64)
}

// requireList loads a list in the caller's household, writing the error
// response itself when the list is missing or the load fails.
func (h *ListHandler) requireList(w http.ResponseWriter, r *http.Request, listID int64) *model.List {
	list, err := h.store.GetByID(listID, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return nil
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return nil
	}
	return list
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.store.List(auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list lists")
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	userID := auth.UserID(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.store.Create(householdID, &userID, req.Name)
	if err != nil {
		h.logger.Error("create list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create list")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("list", "created", list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	list := h.requireList(w, r, id)
	if list == nil {
		return
	}

	items, err := h.store.ListItems(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load items")
		return
	}
	if items == nil {
		items = []model.ListItem{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"list":  list,
		"items": items,
	})
}

func (h *ListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if h.requireList(w, r, id) == nil {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.store.Rename(id, householdID, req.Name)
	if err != nil {
		h.logger.Error("rename list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rename list")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("list", "updated", list.ID, nil))
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if h.requireList(w, r, id) == nil {
		return
	}

	if err := h.store.Delete(id, householdID); err != nil {
		h.logger.Error("delete list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete list")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("list", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// --- Items ---

type listItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

func (h *ListHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	var req listItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	existing, err := h.store.ListItems(listID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	item, err := h.store.CreateItem(listID, req.Name, req.Quantity, len(existing))
	if err != nil {
		h.logger.Error("create list item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("list_item", "created", item.ID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetItemByID(id, listID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req listItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := h.store.UpdateItem(id, listID, req.Name, req.Quantity)
	if err != nil {
		h.logger.Error("update list item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("list_item", "updated", item.ID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusOK, item)
}

// ToggleItem flips the marked-off state of an item.
func (h *ListHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetItemByID(id, listID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var markedOff *time.Time
	if existing.MarkedOffAt == nil {
		now := time.Now().UTC()
		markedOff = &now
	}

	item, err := h.store.SetMarkedOff(id, listID, markedOff)
	if err != nil {
		h.logger.Error("toggle list item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle item")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("list_item", "toggled", item.ID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusOK, item)
}

func (h *ListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetItemByID(id, listID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.store.DeleteItem(id, listID); err != nil {
		h.logger.Error("delete list item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("list_item", "deleted", id, map[string]any{"list_id": listID}))
	w.WriteHeader(http.StatusNoContent)
}

// ClearMarkedOff removes every marked-off item in one call.
func (h *ListHandler) ClearMarkedOff(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	if err := h.store.ClearMarkedOff(listID); err != nil {
		h.logger.Error("clear marked-off items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear items")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("list", "cleared", listID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// --- Shares and pins ---

func (h *ListHandler) Share(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	// The target must live in the same household.
	target, err := h.users.GetByID(req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to share list")
		return
	}
	if target == nil || target.HouseholdID == nil || *target.HouseholdID != householdID {
		writeError(w, http.StatusBadRequest, "user not found in household")
		return
	}

	if err := h.store.Share(listID, req.UserID); err != nil {
		h.logger.Error("share list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to share list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	if err := h.store.Unshare(listID, userID); err != nil {
		h.logger.Error("unshare list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unshare list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) Pin(w http.ResponseWriter, r *http.Request) {
	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	var req struct {
		Position int `json:"position"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	if err := h.store.Pin(listID, auth.UserID(r.Context()), req.Position); err != nil {
		h.logger.Error("pin list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to pin list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}
	if h.requireList(w, r, listID) == nil {
		return
	}

	if err := h.store.Unpin(listID, auth.UserID(r.Context())); err != nil {
		h.logger.Error("unpin list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unpin list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) ListPins(w http.ResponseWriter, r *http.Request) {
	pins, err := h.store.ListPins(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pins")
		return
	}
	if pins == nil {
		pins = []model.ListPin{}
	}
	writeJSON(w, http.StatusOK, pins)
}
