package store

import "testing"

func TestMealPlanUpsertReplacesSlot(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Meals")
	plans := NewMealPlanStore(db)
	recipes := NewRecipeStore(db)

	recipe, err := recipes.Create(hh, RecipeParams{Title: "Chili"})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	first, err := plans.Upsert(hh, "2026-09-01", "dinner", &recipe.ID, "", "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Same cell again swaps the content in place.
	second, err := plans.Upsert(hh, "2026-09-01", "dinner", nil, "https://example.com/takeout", "order by 5pm")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: id %d != %d", second.ID, first.ID)
	}
	if second.RecipeID != nil {
		t.Error("recipe_id should be cleared")
	}
	if second.ExternalURL != "https://example.com/takeout" {
		t.Errorf("external_url = %q", second.ExternalURL)
	}

	week, err := plans.ListRange(hh, "2026-09-01", "2026-09-07")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(week) != 1 {
		t.Errorf("plans = %d, want 1", len(week))
	}
}

func TestMealPlanRangeAndIsolation(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Meals")
	other := createTestHousehold(t, db, "Other")
	plans := NewMealPlanStore(db)

	if _, err := plans.Upsert(hh, "2026-09-01", "lunch", nil, "", "leftovers"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := plans.Upsert(hh, "2026-09-10", "lunch", nil, "", "outside range"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := plans.Upsert(other, "2026-09-01", "lunch", nil, "", "not ours"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	week, err := plans.ListRange(hh, "2026-09-01", "2026-09-07")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(week) != 1 || week[0].Note != "leftovers" {
		t.Errorf("got %d plans, want only the in-range one for this household", len(week))
	}
}

func TestPreferenceUpsertKeepsOneRow(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Prefs")
	prefs := NewPreferenceStore(db)

	got, err := prefs.Get(hh)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected no preference yet")
	}

	if _, err := prefs.Upsert(hh, "no mushrooms"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := prefs.Upsert(hh, "no mushrooms, kids eat at 6")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Notes != "no mushrooms, kids eat at 6" {
		t.Errorf("notes = %q", second.Notes)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM meal_planning_preferences WHERE household_id = ?`, hh).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}
