package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue("anna@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	email, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if email != "anna@example.com" {
		t.Errorf("email = %q, want %q", email, "anna@example.com")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", time.Hour)
	other := NewTokenManager("secret-b", time.Hour)

	token, err := tm.Issue("anna@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue("anna@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := tm.Verify(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := tm.Verify(tok); err != ErrInvalidToken {
			t.Errorf("Verify(%q) err = %v, want ErrInvalidToken", tok, err)
		}
	}
}
