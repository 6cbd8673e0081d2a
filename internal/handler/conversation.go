package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
)

// ConversationHandler serves the assistant conversation log.
type ConversationHandler struct {
	store  *store.ConversationStore
	logger *slog.Logger
}

func NewConversationHandler(s *store.ConversationStore, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{store: s, logger: logger}
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	convs, err := h.store.List(auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	conv, err := h.store.Create(auth.HouseholdID(r.Context()), strings.TrimSpace(req.Title), &userID)
	if err != nil {
		h.logger.Error("create conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

// Get returns a conversation with its messages and entity links.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	conv, err := h.store.GetByID(id, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	messages, err := h.store.ListMessages(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []model.ConversationMessage{}
	}

	links, err := h.store.ListLinks(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load links")
		return
	}
	if links == nil {
		links = []model.ConversationLink{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation": conv,
		"messages":     messages,
		"links":        links,
	})
}

func (h *ConversationHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	conv, err := h.store.GetByID(id, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var req struct {
		Role string `json:"role"`
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	switch req.Role {
	case "user", "assistant", "tool":
	default:
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	msg, err := h.store.AppendMessage(id, req.Role, req.Body)
	if err != nil {
		h.logger.Error("append message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to append message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// Link ties a conversation to a domain entity so it can be found from
// that entity later.
func (h *ConversationHandler) Link(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	conv, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var req struct {
		EntityType string `json:"entity_type"`
		EntityID   int64  `json:"entity_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	link, err := h.store.Link(id, householdID, req.EntityType, req.EntityID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, link)
}
