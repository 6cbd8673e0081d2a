package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/recurrence"
	"github.com/patchworkhq/hearth/internal/store"
	"github.com/patchworkhq/hearth/internal/websocket"
)

type TaskHandler struct {
	store  *store.TaskStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(s *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{store: s, hub: hub, logger: logger}
}

type taskRequest struct {
	Title              string     `json:"title"`
	Notes              string     `json:"notes"`
	Status             string     `json:"status"`
	ThemeID            *int64     `json:"theme_id"`
	ProjectID          *int64     `json:"project_id"`
	AssigneeID         *int64     `json:"assignee_id"`
	DueAt              *time.Time `json:"due_at"`
	Priority           int        `json:"priority"`
	RecurrenceType     string     `json:"recurrence_type"`
	RecurrenceInterval int        `json:"recurrence_interval"`
}

func (r taskRequest) params() store.TaskParams {
	return store.TaskParams{
		Title:              r.Title,
		Notes:              r.Notes,
		Status:             r.Status,
		ThemeID:            r.ThemeID,
		ProjectID:          r.ProjectID,
		AssigneeID:         r.AssigneeID,
		DueAt:              r.DueAt,
		Priority:           r.Priority,
		RecurrenceType:     r.RecurrenceType,
		RecurrenceInterval: r.RecurrenceInterval,
	}
}

func validTaskRequest(req *taskRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	switch req.Status {
	case "", model.StatusTodo, model.StatusInProgress, model.StatusDone, model.StatusArchived:
	default:
		return "invalid status"
	}
	switch req.Priority {
	case model.PriorityNormal, model.PriorityHigh, model.PriorityUrgent:
	default:
		return "invalid priority"
	}
	switch req.RecurrenceType {
	case "", model.RecurNone, model.RecurDaily, model.RecurWeekly, model.RecurMonthly:
	default:
		return "invalid recurrence_type"
	}
	if req.RecurrenceType != "" && req.RecurrenceType != model.RecurNone && req.DueAt == nil {
		return "recurring tasks need a due date"
	}
	return ""
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.List(auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := validTaskRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.store.Create(householdID, req.params())
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.store.GetByID(id, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Status == "" {
		req.Status = existing.Status
	}
	if msg := validTaskRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.store.Update(id, householdID, req.params())
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.store.Delete(id, householdID); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Complete marks a task done. A recurring task is immediately reopened at
// its next due date; completed_at keeps the last completion time either way.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id, householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	now := time.Now().UTC()
	task, err := h.store.Complete(id, householdID, now)
	if err != nil {
		h.logger.Error("complete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}

	if task.DueAt != nil {
		if next := recurrence.Next(*task.DueAt, task.RecurrenceType, task.RecurrenceInterval); next != nil {
			task, err = h.store.Reschedule(id, householdID, *next)
			if err != nil {
				h.logger.Error("reschedule task", "error", err)
				writeError(w, http.StatusInternalServerError, "failed to reschedule task")
				return
			}
		}
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("task", "completed", id, nil))
	writeJSON(w, http.StatusOK, task)
}
