package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/push"
	"github.com/patchworkhq/hearth/internal/store"
)

type PushHandler struct {
	store      *store.PushStore
	service    *push.Service
	dispatcher *push.Dispatcher
	logger     *slog.Logger
}

func NewPushHandler(s *store.PushStore, service *push.Service, dispatcher *push.Dispatcher, logger *slog.Logger) *PushHandler {
	return &PushHandler{store: s, service: service, dispatcher: dispatcher, logger: logger}
}

// VAPIDKey exposes the public key the browser needs to subscribe.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"key": h.service.VAPIDPublicKey()})
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint"`
	DeviceName string `json:"device_name"`
	Keys       struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Endpoint = strings.TrimSpace(req.Endpoint)
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	_, err := h.store.CreateSubscription(
		auth.UserID(r.Context()), auth.HouseholdID(r.Context()),
		req.Endpoint, req.Keys.P256dh, req.Keys.Auth, req.DeviceName,
	)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// Unsubscribe deletes by endpoint and succeeds even when the endpoint is
// already gone.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.store.DeleteByEndpoint(req.Endpoint); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Test sends a notification to every device of the calling user.
func (h *PushHandler) Test(w http.ResponseWriter, r *http.Request) {
	result := h.dispatcher.SendToUser(auth.UserID(r.Context()), push.Payload{
		Title: "Test Notification",
		Body:  "Push notifications are working.",
		Tag:   "test",
	})
	writeJSON(w, http.StatusOK, result)
}
