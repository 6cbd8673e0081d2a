package store

import "testing"

func TestRegisterCreatesUserWithHousehold(t *testing.T) {
	db := openTestDB(t)
	users := NewUserStore(db)
	households := NewHouseholdStore(db)

	u, err := users.Register("new@example.com", "hash", "new@example.com's household")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.HouseholdID == nil {
		t.Fatal("registered user must have a household")
	}

	hh, err := households.GetByID(*u.HouseholdID)
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if hh == nil || hh.Name != "new@example.com's household" {
		t.Errorf("household = %+v", hh)
	}
}

func TestRegisterDuplicateEmailLeavesNoOrphans(t *testing.T) {
	db := openTestDB(t)
	users := NewUserStore(db)

	if _, err := users.Register("taken@example.com", "hash", "first household"); err != nil {
		t.Fatalf("register: %v", err)
	}

	var before int
	if err := db.QueryRow(`SELECT COUNT(*) FROM households`).Scan(&before); err != nil {
		t.Fatalf("count households: %v", err)
	}

	if _, err := users.Register("taken@example.com", "hash", "second household"); err == nil {
		t.Fatal("duplicate email should fail")
	}

	// The failed registration must not leave a stray household behind.
	var after int
	if err := db.QueryRow(`SELECT COUNT(*) FROM households`).Scan(&after); err != nil {
		t.Fatalf("count households: %v", err)
	}
	if after != before {
		t.Errorf("households = %d, want %d", after, before)
	}
}
