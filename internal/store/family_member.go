package store

import (
	"database/sql"
	"fmt"

	"github.com/patchworkhq/hearth/internal/model"
)

type FamilyMemberStore struct {
	db *sql.DB
}

func NewFamilyMemberStore(db *sql.DB) *FamilyMemberStore {
	return &FamilyMemberStore{db: db}
}

const familyMemberCols = `id, household_id, name, color, avatar_emoji, sort_order, created_at, updated_at`

func scanFamilyMember(scanner interface{ Scan(...any) error }) (*model.FamilyMember, error) {
	var m model.FamilyMember
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.Name, &m.Color, &m.AvatarEmoji, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *FamilyMemberStore) Create(householdID int64, name, color, avatarEmoji string) (*model.FamilyMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO family_members (household_id, name, color, avatar_emoji) VALUES (?, ?, ?, ?)`,
		householdID, name, color, avatarEmoji,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *FamilyMemberStore) GetByID(id, householdID int64) (*model.FamilyMember, error) {
	row := s.db.QueryRow(
		`SELECT `+familyMemberCols+` FROM family_members WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	m, err := scanFamilyMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family member: %w", err)
	}
	return m, nil
}

func (s *FamilyMemberStore) List(householdID int64) ([]model.FamilyMember, error) {
	rows, err := s.db.Query(
		`SELECT `+familyMemberCols+` FROM family_members WHERE household_id = ? ORDER BY sort_order ASC, name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var members []model.FamilyMember
	for rows.Next() {
		m, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyMemberStore) Update(id, householdID int64, name, color, avatarEmoji string) (*model.FamilyMember, error) {
	_, err := s.db.Exec(
		`UPDATE family_members SET name = ?, color = ?, avatar_emoji = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND household_id = ?`,
		name, color, avatarEmoji, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update family member: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *FamilyMemberStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM family_members WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete family member: %w", err)
	}
	return nil
}

// NameExists reports whether another member of the household already uses
// the name. excludeID skips the member being edited.
func (s *FamilyMemberStore) NameExists(householdID int64, name string, excludeID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM family_members WHERE household_id = ? AND name = ? AND id != ?`,
		householdID, name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check family member name: %w", err)
	}
	return count > 0, nil
}

func (s *FamilyMemberStore) UpdateSortOrder(householdID int64, ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.Exec(
			`UPDATE family_members SET sort_order = ? WHERE id = ? AND household_id = ?`,
			i, id, householdID,
		); err != nil {
			return fmt.Errorf("update sort order: %w", err)
		}
	}
	return tx.Commit()
}
