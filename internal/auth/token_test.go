package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(&User{ID: 7, Email: "bob@example.com", Name: "Bob", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != 7 || claims.Email != "bob@example.com" || claims.Name != "Bob" {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.IsAdmin() {
		t.Error("expected admin claims")
	}
}

func TestParseExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue(&User{ID: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestParseInvalid(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := other.Issue(&User{ID: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, tok := range []string{token, "garbage", ""} {
		if _, err := issuer.Parse(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Parse(%q) error = %v, want ErrTokenInvalid", tok, err)
		}
	}
}
