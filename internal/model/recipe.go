package model

import "time"

// Recipe source values.
const (
	SourceManual    = "manual"
	SourceImported  = "imported"
	SourceAssistant = "assistant"
)

type Recipe struct {
	ID          int64              `json:"id"`
	HouseholdID int64              `json:"household_id"`
	Title       string             `json:"title"`
	Source      string             `json:"source"`
	PrepMinutes int                `json:"prep_minutes"`
	CookMinutes int                `json:"cook_minutes"`
	Servings    int                `json:"servings"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Steps       []RecipeStep       `json:"steps"`
	Tags        []string           `json:"tags"`
	Attachments []RecipeAttachment `json:"attachments"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type RecipeIngredient struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit"`
	Qualifiers string `json:"qualifiers"`
}

type RecipeStep struct {
	Position int    `json:"position"`
	Body     string `json:"body"`
}

type RecipeAttachment struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// Meal slot values within a meal plan day.
const (
	SlotBreakfast = "breakfast"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
	SlotSnacks    = "snacks"
)

type MealPlan struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	PlanDate    string    `json:"plan_date"`
	Slot        string    `json:"slot"`
	RecipeID    *int64    `json:"recipe_id"`
	ExternalURL string    `json:"external_url"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MealPlanningPreference struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
