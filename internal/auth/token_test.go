package auth

import (
	"errors"
	"testing"
	"time"

	"checkup-reservation/internal/domain"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret", time.Minute)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}

	raw, expires, err := tokens.Issue(&domain.User{EmployeeNo: "E1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expires.After(time.Now()) {
		t.Errorf("expected expiry in the future, got %v", expires)
	}

	claims, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "E1" || claims.Role != domain.RoleAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokensRejects(t *testing.T) {
	tokens, _ := NewTokens("secret", time.Minute)
	other, _ := NewTokens("other-secret", time.Minute)

	foreign, _, err := other.Issue(&domain.User{EmployeeNo: "E1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tokens.Parse(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	expired, _ := NewTokens("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, _, err := expired.Issue(&domain.User{EmployeeNo: "E1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tokens.Parse(stale); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := tokens.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens("  ", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
