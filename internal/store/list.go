package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/patchworkhq/hearth/internal/model"
)

type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

// --- List methods ---

const listCols = `id, household_id, owner_id, name, created_at, updated_at`

func scanList(scanner interface{ Scan(...any) error }) (*model.List, error) {
	var l model.List
	var ownerID sql.NullInt64

	err := scanner.Scan(&l.ID, &l.HouseholdID, &ownerID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if ownerID.Valid {
		l.OwnerID = &ownerID.Int64
	}
	return &l, nil
}

func (s *ListStore) Create(householdID int64, ownerID *int64, name string) (*model.List, error) {
	result, err := s.db.Exec(
		`INSERT INTO lists (household_id, owner_id, name) VALUES (?, ?, ?)`,
		householdID, nullInt(ownerID), name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *ListStore) GetByID(id, householdID int64) (*model.List, error) {
	row := s.db.QueryRow(
		`SELECT `+listCols+` FROM lists WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (s *ListStore) List(householdID int64) ([]model.List, error) {
	rows, err := s.db.Query(
		`SELECT `+listCols+` FROM lists WHERE household_id = ? ORDER BY name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ListStore) Rename(id, householdID int64, name string) (*model.List, error) {
	_, err := s.db.Exec(
		`UPDATE lists SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND household_id = ?`,
		name, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("rename list: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *ListStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM lists WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// --- Item methods ---

const listItemCols = `id, list_id, name, quantity, marked_off_at, sort_order, created_at`

func scanListItem(scanner interface{ Scan(...any) error }) (*model.ListItem, error) {
	var it model.ListItem
	var markedOffAt sql.NullTime

	err := scanner.Scan(&it.ID, &it.ListID, &it.Name, &it.Quantity, &markedOffAt, &it.SortOrder, &it.CreatedAt)
	if err != nil {
		return nil, err
	}

	if markedOffAt.Valid {
		it.MarkedOffAt = &markedOffAt.Time
	}
	return &it, nil
}

func (s *ListStore) CreateItem(listID int64, name, quantity string, sortOrder int) (*model.ListItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO list_items (list_id, name, quantity, sort_order) VALUES (?, ?, ?, ?)`,
		listID, name, quantity, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert list item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id, listID)
}

func (s *ListStore) GetItemByID(id, listID int64) (*model.ListItem, error) {
	row := s.db.QueryRow(
		`SELECT `+listItemCols+` FROM list_items WHERE id = ? AND list_id = ?`,
		id, listID,
	)
	it, err := scanListItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list item: %w", err)
	}
	return it, nil
}

func (s *ListStore) ListItems(listID int64) ([]model.ListItem, error) {
	rows, err := s.db.Query(
		`SELECT `+listItemCols+` FROM list_items WHERE list_id = ? ORDER BY sort_order ASC, id ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ListItem
	for rows.Next() {
		it, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *ListStore) UpdateItem(id, listID int64, name, quantity string) (*model.ListItem, error) {
	_, err := s.db.Exec(
		`UPDATE list_items SET name = ?, quantity = ? WHERE id = ? AND list_id = ?`,
		name, quantity, id, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("update list item: %w", err)
	}
	return s.GetItemByID(id, listID)
}

// SetMarkedOff sets or clears the completion timestamp. A nil time clears it.
func (s *ListStore) SetMarkedOff(id, listID int64, markedOffAt *time.Time) (*model.ListItem, error) {
	_, err := s.db.Exec(
		`UPDATE list_items SET marked_off_at = ? WHERE id = ? AND list_id = ?`,
		nullTime(markedOffAt), id, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark off list item: %w", err)
	}
	return s.GetItemByID(id, listID)
}

func (s *ListStore) DeleteItem(id, listID int64) error {
	_, err := s.db.Exec(`DELETE FROM list_items WHERE id = ? AND list_id = ?`, id, listID)
	if err != nil {
		return fmt.Errorf("delete list item: %w", err)
	}
	return nil
}

// ClearMarkedOff deletes every marked-off item in the list.
func (s *ListStore) ClearMarkedOff(listID int64) error {
	_, err := s.db.Exec(`DELETE FROM list_items WHERE list_id = ? AND marked_off_at IS NOT NULL`, listID)
	if err != nil {
		return fmt.Errorf("clear marked-off items: %w", err)
	}
	return nil
}

// --- Share methods ---

func (s *ListStore) Share(listID, userID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO list_shares (list_id, user_id) VALUES (?, ?)
		 ON CONFLICT(list_id, user_id) DO NOTHING`,
		listID, userID,
	)
	if err != nil {
		return fmt.Errorf("share list: %w", err)
	}
	return nil
}

func (s *ListStore) Unshare(listID, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM list_shares WHERE list_id = ? AND user_id = ?`, listID, userID)
	if err != nil {
		return fmt.Errorf("unshare list: %w", err)
	}
	return nil
}

func (s *ListStore) ListShares(listID int64) ([]model.ListShare, error) {
	rows, err := s.db.Query(
		`SELECT id, list_id, user_id, created_at FROM list_shares WHERE list_id = ? ORDER BY id ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var shares []model.ListShare
	for rows.Next() {
		var sh model.ListShare
		if err := rows.Scan(&sh.ID, &sh.ListID, &sh.UserID, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}

// --- Pin methods ---

// Pin upserts a per-user pin with an ordering position.
func (s *ListStore) Pin(listID, userID int64, position int) error {
	_, err := s.db.Exec(
		`INSERT INTO list_pins (list_id, user_id, position) VALUES (?, ?, ?)
		 ON CONFLICT(list_id, user_id) DO UPDATE SET position = excluded.position`,
		listID, userID, position,
	)
	if err != nil {
		return fmt.Errorf("pin list: %w", err)
	}
	return nil
}

func (s *ListStore) Unpin(listID, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM list_pins WHERE list_id = ? AND user_id = ?`, listID, userID)
	if err != nil {
		return fmt.Errorf("unpin list: %w", err)
	}
	return nil
}

func (s *ListStore) ListPins(userID int64) ([]model.ListPin, error) {
	rows, err := s.db.Query(
		`SELECT id, list_id, user_id, position, created_at FROM list_pins
		 WHERE user_id = ? ORDER BY position ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	defer rows.Close()

	var pins []model.ListPin
	for rows.Next() {
		var p model.ListPin
		if err := rows.Scan(&p.ID, &p.ListID, &p.UserID, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pin: %w", err)
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}
