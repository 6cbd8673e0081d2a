package store

import (
	"database/sql"
	"fmt"

	"github.com/patchworkhq/hearth/internal/model"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

func (s *PreferenceStore) Get(householdID int64) (*model.MealPlanningPreference, error) {
	var p model.MealPlanningPreference
	err := s.db.QueryRow(
		`SELECT id, household_id, notes, created_at, updated_at
		 FROM meal_planning_preferences WHERE household_id = ?`,
		householdID,
	).Scan(&p.ID, &p.HouseholdID, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &p, nil
}

// Upsert writes the household's planning notes in a single statement, so
// concurrent writers cannot race a read-then-insert.
func (s *PreferenceStore) Upsert(householdID int64, notes string) (*model.MealPlanningPreference, error) {
	_, err := s.db.Exec(
		`INSERT INTO meal_planning_preferences (household_id, notes) VALUES (?, ?)
		 ON CONFLICT(household_id) DO UPDATE SET
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP`,
		householdID, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}
	return s.Get(householdID)
}
