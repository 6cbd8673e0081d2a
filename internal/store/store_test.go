package store

import (
	"database/sql"
	"testing"

	"github.com/patchworkhq/hearth/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestHousehold(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	hh, err := NewHouseholdStore(db).Create(name)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return hh.ID
}

func createTestUser(t *testing.T, db *sql.DB, email string, householdID int64) int64 {
	t.Helper()

	users := NewUserStore(db)
	u, err := users.Create(email, "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := users.SetHousehold(u.ID, householdID); err != nil {
		t.Fatalf("set household: %v", err)
	}
	return u.ID
}
