package store

import (
	"testing"

	"github.com/patchworkhq/hearth/internal/model"
)

func TestRecipeCreateDefaults(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Kitchen")
	recipes := NewRecipeStore(db)

	recipe, err := recipes.Create(hh, RecipeParams{Title: "Toast"})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if recipe.Source != model.SourceManual {
		t.Errorf("source = %q, want manual", recipe.Source)
	}
	if recipe.Ingredients == nil || recipe.Steps == nil || recipe.Tags == nil || recipe.Attachments == nil {
		t.Error("child collections should be empty, not nil")
	}
	if len(recipe.Ingredients)+len(recipe.Steps)+len(recipe.Tags) != 0 {
		t.Error("expected no children")
	}
}

func TestRecipeUpdateReplacesChildren(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Kitchen")
	recipes := NewRecipeStore(db)

	recipe, err := recipes.Create(hh, RecipeParams{
		Title:       "Pancakes",
		Ingredients: []model.RecipeIngredient{{Name: "flour"}, {Name: "milk"}},
		Steps:       []model.RecipeStep{{Position: 1, Body: "Mix"}, {Position: 2, Body: "Fry"}},
		Tags:        []string{"breakfast"},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	updated, err := recipes.Update(recipe.ID, hh, RecipeParams{
		Title:       "Pancakes",
		Source:      model.SourceManual,
		Ingredients: []model.RecipeIngredient{{Name: "flour"}},
		Steps:       []model.RecipeStep{{Position: 1, Body: "Mix and fry"}},
		Tags:        []string{"breakfast", "weekend"},
	})
	if err != nil {
		t.Fatalf("update recipe: %v", err)
	}
	if updated == nil {
		t.Fatal("update returned nil for existing recipe")
	}
	if len(updated.Ingredients) != 1 {
		t.Errorf("ingredients = %d, want 1 after wholesale replace", len(updated.Ingredients))
	}
	if len(updated.Steps) != 1 || updated.Steps[0].Body != "Mix and fry" {
		t.Errorf("steps = %v", updated.Steps)
	}
	if len(updated.Tags) != 2 {
		t.Errorf("tags = %v, want 2", updated.Tags)
	}
}

func TestRecipeUpdateMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Kitchen")
	recipes := NewRecipeStore(db)

	updated, err := recipes.Update(9999, hh, RecipeParams{Title: "Ghost", Source: model.SourceManual})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated != nil {
		t.Error("updating a missing recipe should return nil")
	}
}

func TestRecipeSearchMatchesTitleAndTag(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Kitchen")
	recipes := NewRecipeStore(db)

	if _, err := recipes.Create(hh, RecipeParams{Title: "Thai Curry", Tags: []string{"spicy"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := recipes.Create(hh, RecipeParams{Title: "Mild Stew", Tags: []string{"winter"}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	byTitle, err := recipes.Search(hh, "curry")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Thai Curry" {
		t.Errorf("search by title = %d results", len(byTitle))
	}

	byTag, err := recipes.Search(hh, "spicy")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byTag) != 1 || byTag[0].Title != "Thai Curry" {
		t.Errorf("search by tag = %d results", len(byTag))
	}

	none, err := recipes.Search(hh, "dessert")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("search = %d results, want 0", len(none))
	}
}

func TestRecipeAttachments(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Kitchen")
	recipes := NewRecipeStore(db)

	recipe, err := recipes.Create(hh, RecipeParams{Title: "Bread"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	att, err := recipes.AddAttachment(recipe.ID, "https://example.com/crumb.jpg", "")
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if att.Kind != "image" {
		t.Errorf("kind = %q, want image default", att.Kind)
	}
	if att.ID == "" {
		t.Error("attachment id should be assigned")
	}

	got, err := recipes.GetByID(recipe.ID, hh)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(got.Attachments))
	}

	if err := recipes.DeleteAttachment(att.ID, recipe.ID); err != nil {
		t.Fatalf("delete attachment: %v", err)
	}
	got, err = recipes.GetByID(recipe.ID, hh)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Attachments) != 0 {
		t.Errorf("attachments = %d, want 0", len(got.Attachments))
	}
}
