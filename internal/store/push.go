package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/patchworkhq/hearth/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const pushCols = `id, user_id, household_id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanPushSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := scanner.Scan(
		&sub.ID, &sub.UserID, &sub.HouseholdID, &sub.Endpoint,
		&sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription upserts by endpoint. Re-subscribing from the same
// browser refreshes the keys instead of duplicating the row.
func (s *PushStore) CreateSubscription(userID, householdID int64, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (user_id, household_id, endpoint, p256dh_key, auth_key, device_name)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET
			user_id = excluded.user_id,
			household_id = excluded.household_id,
			p256dh_key = excluded.p256dh_key,
			auth_key = excluded.auth_key,
			device_name = excluded.device_name`,
		userID, householdID, endpoint, p256dh, auth, deviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}
	return s.GetByEndpoint(endpoint)
}

func (s *PushStore) GetByEndpoint(endpoint string) (*model.PushSubscription, error) {
	row := s.db.QueryRow(
		`SELECT `+pushCols+` FROM push_subscriptions WHERE endpoint = ?`,
		endpoint,
	)
	sub, err := scanPushSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListByUser(userID int64) ([]model.PushSubscription, error) {
	return s.collect(
		`SELECT `+pushCols+` FROM push_subscriptions WHERE user_id = ? ORDER BY id ASC`,
		userID,
	)
}

func (s *PushStore) ListByHousehold(householdID int64) ([]model.PushSubscription, error) {
	return s.collect(
		`SELECT `+pushCols+` FROM push_subscriptions WHERE household_id = ? ORDER BY id ASC`,
		householdID,
	)
}

func (s *PushStore) collect(query string, args ...any) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanPushSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// DeleteByEndpoint is idempotent; deleting an unknown endpoint is not an
// error.
func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

// --- Digest send tracking ---

// WasSent reports whether a digest was already recorded for the reference
// period.
func (s *PushStore) WasSent(householdID int64, digestType, referenceID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sent_digests
		 WHERE household_id = ? AND digest_type = ? AND reference_id = ?`,
		householdID, digestType, referenceID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent digest: %w", err)
	}
	return count > 0, nil
}

func (s *PushStore) RecordSent(householdID int64, digestType, referenceID string) error {
	_, err := s.db.Exec(
		`INSERT INTO sent_digests (household_id, digest_type, reference_id) VALUES (?, ?, ?)
		 ON CONFLICT(household_id, digest_type, reference_id) DO NOTHING`,
		householdID, digestType, referenceID,
	)
	if err != nil {
		return fmt.Errorf("record sent digest: %w", err)
	}
	return nil
}

// CleanupSent drops tracking rows older than the cutoff.
func (s *PushStore) CleanupSent(before time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sent_digests WHERE sent_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup sent digests: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
