package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
	"github.com/patchworkhq/hearth/internal/websocket"
)

type MealPlanHandler struct {
	store   *store.MealPlanStore
	recipes *store.RecipeStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMealPlanHandler(s *store.MealPlanStore, recipes *store.RecipeStore, hub *websocket.Hub, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{store: s, recipes: recipes, hub: hub, logger: logger}
}

func validSlot(slot string) bool {
	switch slot {
	case model.SlotBreakfast, model.SlotLunch, model.SlotDinner, model.SlotSnacks:
		return true
	}
	return false
}

func validPlanDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// List returns the plan entries for a date range. Defaults to the next
// seven days when no range is given.
func (h *MealPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" {
		start = time.Now().UTC().Format("2006-01-02")
	}
	if end == "" {
		end = time.Now().UTC().AddDate(0, 0, 6).Format("2006-01-02")
	}
	if !validPlanDate(start) || !validPlanDate(end) {
		writeError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}

	plans, err := h.store.ListRange(householdID, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list meal plans")
		return
	}
	if plans == nil {
		plans = []model.MealPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

type mealPlanRequest struct {
	PlanDate    string `json:"plan_date"`
	Slot        string `json:"slot"`
	RecipeID    *int64 `json:"recipe_id"`
	ExternalURL string `json:"external_url"`
	Note        string `json:"note"`
}

// Upsert fills one (date, slot) cell, replacing whatever was there.
func (h *MealPlanHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req mealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if !validPlanDate(req.PlanDate) {
		writeError(w, http.StatusBadRequest, "plan_date must be YYYY-MM-DD")
		return
	}
	if !validSlot(req.Slot) {
		writeError(w, http.StatusBadRequest, "invalid slot")
		return
	}

	if req.RecipeID != nil {
		recipe, err := h.recipes.GetByID(*req.RecipeID, householdID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save meal plan")
			return
		}
		if recipe == nil {
			writeError(w, http.StatusBadRequest, "recipe not found")
			return
		}
	}

	plan, err := h.store.Upsert(householdID, req.PlanDate, req.Slot, req.RecipeID, req.ExternalURL, req.Note)
	if err != nil {
		h.logger.Error("upsert meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save meal plan")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("meal_plan", "updated", plan.ID, nil))
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.store.Delete(id, householdID); err != nil {
		h.logger.Error("delete meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete meal plan")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("meal_plan", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
