package store

import (
	"database/sql"
	"fmt"

	"github.com/patchworkhq/hearth/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, email, password_hash, household_id, family_member_id, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var householdID, familyMemberID sql.NullInt64

	err := scanner.Scan(&u.ID, &u.Email, &u.PasswordHash, &householdID, &familyMemberID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if householdID.Valid {
		u.HouseholdID = &householdID.Int64
	}
	if familyMemberID.Valid {
		u.FamilyMemberID = &familyMemberID.Int64
	}
	return &u, nil
}

func (s *UserStore) Create(email, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// Register creates the user together with their own household in one
// transaction, so a user can never end up without a household.
func (s *UserStore) Register(email, passwordHash, householdName string) (*model.User, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	result, err = tx.Exec(`INSERT INTO households (name) VALUES (?)`, householdName)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	householdID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET household_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		householdID, userID,
	); err != nil {
		return nil, fmt.Errorf("set user household: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit registration: %w", err)
	}
	return s.GetByID(userID)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByHousehold(householdID int64) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE household_id = ? ORDER BY id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users by household: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) SetHousehold(userID, householdID int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET household_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("set user household: %w", err)
	}
	return nil
}

// LinkFamilyMember associates a user with a family member profile in the
// same household.
func (s *UserStore) LinkFamilyMember(userID int64, familyMemberID *int64) error {
	var fmID sql.NullInt64
	if familyMemberID != nil {
		fmID = sql.NullInt64{Int64: *familyMemberID, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE users SET family_member_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		fmID, userID,
	)
	if err != nil {
		return fmt.Errorf("link family member: %w", err)
	}
	return nil
}
