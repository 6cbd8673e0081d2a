package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/patchworkhq/hearth/internal/digest"
)

// DigestHandler exposes admin endpoints for triggering digest runs from an
// external cron. Sends are deduplicated per period, so overlapping with
// the internal scheduler is harmless.
type DigestHandler struct {
	service *digest.Service
	logger  *slog.Logger
}

func NewDigestHandler(service *digest.Service, logger *slog.Logger) *DigestHandler {
	return &DigestHandler{service: service, logger: logger}
}

func (h *DigestHandler) RunDaily(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SendDaily(time.Now().UTC())
	if err != nil {
		h.logger.Error("daily digest run", "error", err)
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *DigestHandler) RunWeekly(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SendWeekly(time.Now().UTC())
	if err != nil {
		h.logger.Error("weekly summary run", "error", err)
	}
	writeJSON(w, http.StatusOK, result)
}
