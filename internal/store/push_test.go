package store

import (
	"testing"
	"time"

	"github.com/patchworkhq/hearth/internal/model"
)

func TestPushSubscriptionUpsertByEndpoint(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Push")
	user := createTestUser(t, db, "push@example.com", hh)
	subs := NewPushStore(db)

	first, err := subs.CreateSubscription(user, hh, "https://push.example/ep1", "p256dh-a", "auth-a", "Phone")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	// Same endpoint from a re-subscribe refreshes keys in place.
	second, err := subs.CreateSubscription(user, hh, "https://push.example/ep1", "p256dh-b", "auth-b", "Phone (new)")
	if err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-subscribe created a new row: id %d != %d", second.ID, first.ID)
	}
	if second.P256dhKey != "p256dh-b" || second.AuthKey != "auth-b" {
		t.Error("re-subscribe should refresh keys")
	}

	byUser, err := subs.ListByUser(user)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 1 {
		t.Errorf("subscriptions = %d, want 1", len(byUser))
	}
}

func TestPushDeleteByEndpointIdempotent(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Push")
	user := createTestUser(t, db, "push@example.com", hh)
	subs := NewPushStore(db)

	if _, err := subs.CreateSubscription(user, hh, "https://push.example/gone", "k", "a", ""); err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	if err := subs.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := subs.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}

	sub, err := subs.GetByEndpoint("https://push.example/gone")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sub != nil {
		t.Error("subscription should be gone")
	}
}

func TestSentDigestTracking(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Digest")
	subs := NewPushStore(db)

	sent, err := subs.WasSent(hh, model.DigestDaily, "2026-08-29")
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if sent {
		t.Error("nothing recorded yet")
	}

	if err := subs.RecordSent(hh, model.DigestDaily, "2026-08-29"); err != nil {
		t.Fatalf("record sent: %v", err)
	}
	// Recording again must not error; the dedup row already exists.
	if err := subs.RecordSent(hh, model.DigestDaily, "2026-08-29"); err != nil {
		t.Errorf("duplicate record: %v", err)
	}

	sent, err = subs.WasSent(hh, model.DigestDaily, "2026-08-29")
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if !sent {
		t.Error("digest should be marked sent")
	}

	// A different type with the same reference is independent.
	sent, err = subs.WasSent(hh, model.DigestWeekly, "2026-08-29")
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if sent {
		t.Error("weekly digest was never sent")
	}
}

func TestCleanupSentDropsOldRows(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Cleanup")
	subs := NewPushStore(db)

	if err := subs.RecordSent(hh, model.DigestDaily, "2026-08-29"); err != nil {
		t.Fatalf("record sent: %v", err)
	}

	n, err := subs.CleanupSent(time.Now().UTC().AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 0 {
		t.Errorf("cleanup removed %d fresh rows, want 0", n)
	}

	n, err = subs.CleanupSent(time.Now().UTC().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("cleanup removed %d rows, want 1", n)
	}
}
