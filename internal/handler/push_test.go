package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/database"
	"github.com/patchworkhq/hearth/internal/store"
)

func setupPushTest(t *testing.T) (*PushHandler, *store.PushStore, auth.AuthContext) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hh, err := store.NewHouseholdStore(db).Create("Push House")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	users := store.NewUserStore(db)
	u, err := users.Create("push@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := users.SetHousehold(u.ID, hh.ID); err != nil {
		t.Fatalf("set household: %v", err)
	}

	subs := store.NewPushStore(db)
	h := NewPushHandler(subs, nil, nil, slog.Default())
	return h, subs, auth.AuthContext{UserID: u.ID, HouseholdID: hh.ID, Email: u.Email}
}

func authedJSONRequest(t *testing.T, ac auth.AuthContext, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(auth.WithAuth(req.Context(), ac))
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if !body.Success {
		t.Errorf("body = %s, want success=true", rec.Body.String())
	}
}

func TestPushSubscribeReturnsSuccess(t *testing.T) {
	h, subs, ac := setupPushTest(t)

	rec := httptest.NewRecorder()
	h.Subscribe(rec, authedJSONRequest(t, ac, "POST", "/api/push/subscribe",
		`{"endpoint":"https://push.example/ep1","device_name":"Phone","keys":{"p256dh":"k","auth":"a"}}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	decodeSuccess(t, rec)

	sub, err := subs.GetByEndpoint("https://push.example/ep1")
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if sub == nil || sub.UserID != ac.UserID {
		t.Errorf("subscription not stored for user: %+v", sub)
	}
}

func TestPushUnsubscribeReturnsSuccess(t *testing.T) {
	h, subs, ac := setupPushTest(t)

	if _, err := subs.CreateSubscription(ac.UserID, ac.HouseholdID, "https://push.example/gone", "k", "a", ""); err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Unsubscribe(rec, authedJSONRequest(t, ac, "POST", "/api/push/unsubscribe",
		`{"endpoint":"https://push.example/gone"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	decodeSuccess(t, rec)

	sub, err := subs.GetByEndpoint("https://push.example/gone")
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if sub != nil {
		t.Error("subscription should be deleted")
	}

	// Unsubscribing an endpoint that is already gone still succeeds.
	rec = httptest.NewRecorder()
	h.Unsubscribe(rec, authedJSONRequest(t, ac, "POST", "/api/push/unsubscribe",
		`{"endpoint":"https://push.example/gone"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat status = %d, want 200", rec.Code)
	}
	decodeSuccess(t, rec)
}
