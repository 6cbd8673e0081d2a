package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/patchworkhq/hearth/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

const recipeCols = `id, household_id, title, source, prep_minutes, cook_minutes, servings, created_at, updated_at`

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	err := scanner.Scan(
		&r.ID, &r.HouseholdID, &r.Title, &r.Source,
		&r.PrepMinutes, &r.CookMinutes, &r.Servings,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RecipeParams carries the writable fields of a recipe, children included.
// Children are replaced wholesale on update.
type RecipeParams struct {
	Title       string
	Source      string
	PrepMinutes int
	CookMinutes int
	Servings    int
	Ingredients []model.RecipeIngredient
	Steps       []model.RecipeStep
	Tags        []string
}

func (s *RecipeStore) Create(householdID int64, p RecipeParams) (*model.Recipe, error) {
	if p.Source == "" {
		p.Source = model.SourceManual
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO recipes (household_id, title, source, prep_minutes, cook_minutes, servings)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		householdID, p.Title, p.Source, p.PrepMinutes, p.CookMinutes, p.Servings,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := insertRecipeChildren(tx, id, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit recipe: %w", err)
	}
	return s.GetByID(id, householdID)
}

// Update overwrites the recipe and replaces every child row.
func (s *RecipeStore) Update(id, householdID int64, p RecipeParams) (*model.Recipe, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE recipes SET title = ?, prep_minutes = ?, cook_minutes = ?, servings = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND household_id = ?`,
		p.Title, p.PrepMinutes, p.CookMinutes, p.Servings, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	for _, table := range []string{"recipe_ingredients", "recipe_steps", "recipe_tags"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE recipe_id = ?`, id); err != nil {
			return nil, fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertRecipeChildren(tx, id, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit recipe: %w", err)
	}
	return s.GetByID(id, householdID)
}

func insertRecipeChildren(tx *sql.Tx, recipeID int64, p RecipeParams) error {
	for i, ing := range p.Ingredients {
		if _, err := tx.Exec(
			`INSERT INTO recipe_ingredients (recipe_id, name, quantity, unit, qualifiers, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			recipeID, ing.Name, ing.Quantity, ing.Unit, ing.Qualifiers, i,
		); err != nil {
			return fmt.Errorf("insert ingredient: %w", err)
		}
	}
	for i, step := range p.Steps {
		if _, err := tx.Exec(
			`INSERT INTO recipe_steps (recipe_id, position, body) VALUES (?, ?, ?)`,
			recipeID, i, step.Body,
		); err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}
	for _, tag := range p.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO recipe_tags (recipe_id, tag) VALUES (?, ?)
			 ON CONFLICT(recipe_id, tag) DO NOTHING`,
			recipeID, tag,
		); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	return nil
}

func (s *RecipeStore) GetByID(id, householdID int64) (*model.Recipe, error) {
	row := s.db.QueryRow(
		`SELECT `+recipeCols+` FROM recipes WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if err := s.loadChildren(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipeStore) loadChildren(r *model.Recipe) error {
	r.Ingredients = []model.RecipeIngredient{}
	r.Steps = []model.RecipeStep{}
	r.Tags = []string{}
	r.Attachments = []model.RecipeAttachment{}

	rows, err := s.db.Query(
		`SELECT name, quantity, unit, qualifiers FROM recipe_ingredients
		 WHERE recipe_id = ? ORDER BY position ASC, id ASC`,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("load ingredients: %w", err)
	}
	for rows.Next() {
		var ing model.RecipeIngredient
		if err := rows.Scan(&ing.Name, &ing.Quantity, &ing.Unit, &ing.Qualifiers); err != nil {
			rows.Close()
			return fmt.Errorf("scan ingredient: %w", err)
		}
		r.Ingredients = append(r.Ingredients, ing)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(
		`SELECT position, body FROM recipe_steps WHERE recipe_id = ? ORDER BY position ASC, id ASC`,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("load steps: %w", err)
	}
	for rows.Next() {
		var step model.RecipeStep
		if err := rows.Scan(&step.Position, &step.Body); err != nil {
			rows.Close()
			return fmt.Errorf("scan step: %w", err)
		}
		r.Steps = append(r.Steps, step)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(
		`SELECT tag FROM recipe_tags WHERE recipe_id = ? ORDER BY tag ASC`,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			rows.Close()
			return fmt.Errorf("scan tag: %w", err)
		}
		r.Tags = append(r.Tags, tag)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(
		`SELECT id, url, kind FROM recipe_attachments WHERE recipe_id = ? ORDER BY created_at ASC`,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}
	for rows.Next() {
		var att model.RecipeAttachment
		if err := rows.Scan(&att.ID, &att.URL, &att.Kind); err != nil {
			rows.Close()
			return fmt.Errorf("scan attachment: %w", err)
		}
		r.Attachments = append(r.Attachments, att)
	}
	rows.Close()
	return rows.Err()
}

func (s *RecipeStore) List(householdID int64) ([]model.Recipe, error) {
	return s.collect(
		`SELECT `+recipeCols+` FROM recipes WHERE household_id = ? ORDER BY title ASC`,
		householdID,
	)
}

// Search matches the query against recipe titles and tags,
// case-insensitively.
func (s *RecipeStore) Search(householdID int64, query string) ([]model.Recipe, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.collect(
		`SELECT DISTINCT r.id, r.household_id, r.title, r.source, r.prep_minutes,
			r.cook_minutes, r.servings, r.created_at, r.updated_at
		 FROM recipes r
		 LEFT JOIN recipe_tags t ON t.recipe_id = r.id
		 WHERE r.household_id = ? AND (LOWER(r.title) LIKE ? OR LOWER(t.tag) LIKE ?)
		 ORDER BY r.title ASC`,
		householdID, pattern, pattern,
	)
}

func (s *RecipeStore) collect(query string, args ...any) ([]model.Recipe, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		if err := s.loadChildren(&recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (s *RecipeStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// AddAttachment records an attachment under a fresh opaque id.
func (s *RecipeStore) AddAttachment(recipeID int64, url, kind string) (*model.RecipeAttachment, error) {
	if kind == "" {
		kind = "image"
	}
	att := model.RecipeAttachment{
		ID:   uuid.NewString(),
		URL:  url,
		Kind: kind,
	}
	_, err := s.db.Exec(
		`INSERT INTO recipe_attachments (id, recipe_id, url, kind) VALUES (?, ?, ?, ?)`,
		att.ID, recipeID, att.URL, att.Kind,
	)
	if err != nil {
		return nil, fmt.Errorf("insert attachment: %w", err)
	}
	return &att, nil
}

func (s *RecipeStore) DeleteAttachment(attachmentID string, recipeID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM recipe_attachments WHERE id = ? AND recipe_id = ?`,
		attachmentID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}
