package push

import (
	"log/slog"
	"testing"

	"github.com/patchworkhq/hearth/internal/database"
	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
)

type fakeSender struct {
	sent    []string
	failing map[string]error
}

func (f *fakeSender) Send(sub *model.PushSubscription, payload Payload) error {
	if err, ok := f.failing[sub.Endpoint]; ok {
		return err
	}
	f.sent = append(f.sent, sub.Endpoint)
	return nil
}

func setupDispatcherTest(t *testing.T) (*store.PushStore, int64, int64) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	households := store.NewHouseholdStore(db)
	hh, err := households.Create("The Tests")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	users := store.NewUserStore(db)
	u, err := users.Create("test@example.com", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := users.SetHousehold(u.ID, hh.ID); err != nil {
		t.Fatalf("set household: %v", err)
	}

	return store.NewPushStore(db), u.ID, hh.ID
}

func TestDispatcherFanOutContinuesPastFailures(t *testing.T) {
	subs, userID, householdID := setupDispatcherTest(t)

	for _, ep := range []string{"https://push.example/a", "https://push.example/b", "https://push.example/c"} {
		if _, err := subs.CreateSubscription(userID, householdID, ep, "p256dh", "auth", ""); err != nil {
			t.Fatalf("create subscription: %v", err)
		}
	}

	sender := &fakeSender{failing: map[string]error{
		"https://push.example/b": ErrExpired,
	}}
	d := NewDispatcher(sender, subs, slog.Default())

	result := d.SendToHousehold(householdID, Payload{Title: "hi"})
	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
	if result.Sent != 2 {
		t.Errorf("sent = %d, want 2", result.Sent)
	}

	// The expired endpoint should have been removed.
	remaining, err := subs.ListByHousehold(householdID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("remaining subscriptions = %d, want 2", len(remaining))
	}
	for _, sub := range remaining {
		if sub.Endpoint == "https://push.example/b" {
			t.Error("expired subscription was not deleted")
		}
	}
}

func TestDispatcherSendToUser(t *testing.T) {
	subs, userID, householdID := setupDispatcherTest(t)

	if _, err := subs.CreateSubscription(userID, householdID, "https://push.example/only", "k", "a", "phone"); err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	sender := &fakeSender{}
	d := NewDispatcher(sender, subs, slog.Default())

	result := d.SendToUser(userID, Payload{Title: "ping"})
	if result.Sent != 1 || result.Total != 1 {
		t.Errorf("result = %+v, want 1/1", result)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "https://push.example/only" {
		t.Errorf("sent endpoints = %v", sender.sent)
	}
}
