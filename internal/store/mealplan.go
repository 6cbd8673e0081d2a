package store

import (
	"database/sql"
	"fmt"

	"github.com/patchworkhq/hearth/internal/model"
)

type MealPlanStore struct {
	db *sql.DB
}

func NewMealPlanStore(db *sql.DB) *MealPlanStore {
	return &MealPlanStore{db: db}
}

const mealPlanCols = `id, household_id, plan_date, slot, recipe_id, external_url, note, created_at, updated_at`

func scanMealPlan(scanner interface{ Scan(...any) error }) (*model.MealPlan, error) {
	var m model.MealPlan
	var recipeID sql.NullInt64

	err := scanner.Scan(
		&m.ID, &m.HouseholdID, &m.PlanDate, &m.Slot,
		&recipeID, &m.ExternalURL, &m.Note,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if recipeID.Valid {
		m.RecipeID = &recipeID.Int64
	}
	return &m, nil
}

// Upsert writes the entry for a (date, slot) cell, replacing any existing
// entry in that cell.
func (s *MealPlanStore) Upsert(householdID int64, planDate, slot string, recipeID *int64, externalURL, note string) (*model.MealPlan, error) {
	_, err := s.db.Exec(
		`INSERT INTO meal_plans (household_id, plan_date, slot, recipe_id, external_url, note)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(household_id, plan_date, slot) DO UPDATE SET
			recipe_id = excluded.recipe_id,
			external_url = excluded.external_url,
			note = excluded.note,
			updated_at = CURRENT_TIMESTAMP`,
		householdID, planDate, slot, nullInt(recipeID), externalURL, note,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert meal plan: %w", err)
	}
	return s.Get(householdID, planDate, slot)
}

func (s *MealPlanStore) Get(householdID int64, planDate, slot string) (*model.MealPlan, error) {
	row := s.db.QueryRow(
		`SELECT `+mealPlanCols+` FROM meal_plans
		 WHERE household_id = ? AND plan_date = ? AND slot = ?`,
		householdID, planDate, slot,
	)
	m, err := scanMealPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal plan: %w", err)
	}
	return m, nil
}

// ListRange returns entries with plan_date in [startDate, endDate], both
// ISO dates inclusive.
func (s *MealPlanStore) ListRange(householdID int64, startDate, endDate string) ([]model.MealPlan, error) {
	rows, err := s.db.Query(
		`SELECT `+mealPlanCols+` FROM meal_plans
		 WHERE household_id = ? AND plan_date >= ? AND plan_date <= ?
		 ORDER BY plan_date ASC, slot ASC`,
		householdID, startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	defer rows.Close()

	var plans []model.MealPlan
	for rows.Next() {
		m, err := scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal plan: %w", err)
		}
		plans = append(plans, *m)
	}
	return plans, rows.Err()
}

func (s *MealPlanStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM meal_plans WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete meal plan: %w", err)
	}
	return nil
}
