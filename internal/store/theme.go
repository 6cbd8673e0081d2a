package store

import (
	"database/sql"
	"fmt"

	"github.com/patchworkhq/hearth/internal/model"
)

// ThemeStore covers themes and the projects grouped under them.
type ThemeStore struct {
	db *sql.DB
}

func NewThemeStore(db *sql.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

// --- Theme methods ---

const themeCols = `id, household_id, name, icon, color, sort_order, created_at, updated_at`

func scanTheme(scanner interface{ Scan(...any) error }) (*model.Theme, error) {
	var t model.Theme
	err := scanner.Scan(&t.ID, &t.HouseholdID, &t.Name, &t.Icon, &t.Color, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ThemeStore) Create(householdID int64, name, icon, color string, sortOrder int) (*model.Theme, error) {
	result, err := s.db.Exec(
		`INSERT INTO themes (household_id, name, icon, color, sort_order) VALUES (?, ?, ?, ?, ?)`,
		householdID, name, icon, color, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert theme: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *ThemeStore) GetByID(id, householdID int64) (*model.Theme, error) {
	row := s.db.QueryRow(
		`SELECT `+themeCols+` FROM themes WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return t, nil
}

func (s *ThemeStore) List(householdID int64) ([]model.Theme, error) {
	rows, err := s.db.Query(
		`SELECT `+themeCols+` FROM themes WHERE household_id = ? ORDER BY sort_order ASC, name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []model.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, *t)
	}
	return themes, rows.Err()
}

func (s *ThemeStore) Update(id, householdID int64, name, icon, color string, sortOrder int) (*model.Theme, error) {
	_, err := s.db.Exec(
		`UPDATE themes SET name = ?, icon = ?, color = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND household_id = ?`,
		name, icon, color, sortOrder, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update theme: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *ThemeStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM themes WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete theme: %w", err)
	}
	return nil
}

// --- Project methods ---

const projectCols = `id, household_id, theme_id, name, created_at, updated_at`

func scanProject(scanner interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	var themeID sql.NullInt64

	err := scanner.Scan(&p.ID, &p.HouseholdID, &themeID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if themeID.Valid {
		p.ThemeID = &themeID.Int64
	}
	return &p, nil
}

func (s *ThemeStore) CreateProject(householdID int64, themeID *int64, name string) (*model.Project, error) {
	var tID sql.NullInt64
	if themeID != nil {
		tID = sql.NullInt64{Int64: *themeID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO projects (household_id, theme_id, name) VALUES (?, ?, ?)`,
		householdID, tID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetProjectByID(id, householdID)
}

func (s *ThemeStore) GetProjectByID(id, householdID int64) (*model.Project, error) {
	row := s.db.QueryRow(
		`SELECT `+projectCols+` FROM projects WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ThemeStore) ListProjects(householdID int64) ([]model.Project, error) {
	rows, err := s.db.Query(
		`SELECT `+projectCols+` FROM projects WHERE household_id = ? ORDER BY name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *ThemeStore) UpdateProject(id, householdID int64, themeID *int64, name string) (*model.Project, error) {
	var tID sql.NullInt64
	if themeID != nil {
		tID = sql.NullInt64{Int64: *themeID, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE projects SET theme_id = ?, name = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND household_id = ?`,
		tID, name, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.GetProjectByID(id, householdID)
}

func (s *ThemeStore) DeleteProject(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM projects WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
