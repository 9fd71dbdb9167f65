package utils

import (
	"testing"
	"time"
)

func TestSessionCookieRoundTrip(t *testing.T) {
	const secret = "testsecret"

	cookie, err := CreateSessionCookie(secret, "abc123", time.Hour)
	if err != nil {
		t.Fatalf("CreateSessionCookie: %v", err)
	}

	id, err := VerifySessionCookie(secret, cookie)
	if err != nil {
		t.Fatalf("VerifySessionCookie: %v", err)
	}
	if id != "abc123" {
		t.Fatalf("got session ID %q, want abc123", id)
	}
}

func TestSessionCookieWrongSecret(t *testing.T) {
	cookie, err := CreateSessionCookie("secret-a", "abc123", time.Hour)
	if err != nil {
		t.Fatalf("CreateSessionCookie: %v", err)
	}
	if _, err := VerifySessionCookie("secret-b", cookie); err == nil {
		t.Fatal("cookie signed with a different secret should not verify")
	}
}

func TestSessionCookieGarbage(t *testing.T) {
	if _, err := VerifySessionCookie("secret", "not-a-jwt"); err == nil {
		t.Fatal("garbage cookie should not verify")
	}
}

func TestGenerateShortToken(t *testing.T) {
	a := GenerateShortToken(16)
	b := GenerateShortToken(16)
	if len(a) != 32 || len(b) != 32 {
		t.Fatalf("expected 32 hex chars, got %d and %d", len(a), len(b))
	}
	if a == b {
		t.Fatal("two generated tokens should differ")
	}
}
