package auth

import (
	"testing"
	"time"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
)

func TestTokenIssueAndParse(t *testing.T) {
	mgr := NewTokenManager("secret-one", time.Hour)
	user := &User{ID: 42, Email: "a@b.id", Role: authz.RoleParent}

	raw, err := mgr.Issue(user, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := mgr.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected subject 42, got %d", claims.UserID)
	}
	if claims.Role != "PARENT" {
		t.Fatalf("expected role claim PARENT, got %s", claims.Role)
	}
	if claims.TokenID == "" {
		t.Fatalf("expected a jti")
	}
}

func TestTokenParseWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", time.Hour)
	verifier := NewTokenManager("secret-two", time.Hour)

	raw, err := issuer.Issue(&User{ID: 1, Role: authz.RoleAdmin}, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(raw); err != ErrInvalidToken {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestTokenParseExpired(t *testing.T) {
	mgr := NewTokenManager("secret-one", time.Minute)

	raw, err := mgr.Issue(&User{ID: 1, Role: authz.RoleAdmin}, time.Now().Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := mgr.Parse(raw); err != ErrInvalidToken {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}
