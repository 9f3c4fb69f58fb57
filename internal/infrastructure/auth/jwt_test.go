package authinfra

import (
	"context"
	"testing"
	"time"

	"stock-alerts/internal/domain/auth"
)

func TestJWT_IssueAndParse(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	user := auth.User{ID: 42, Username: "alice"}

	token, expires, err := issuer.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if remaining := time.Until(expires); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("unexpected expiry: %v", expires)
	}

	claims, err := issuer.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	token, _, err := NewJWTIssuer("secret-a", time.Hour).Issue(context.Background(), auth.User{ID: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewJWTIssuer("secret-b", time.Hour).ParseAccessToken(token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestJWT_Expired(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, _, err := issuer.Issue(context.Background(), auth.User{ID: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.ParseAccessToken(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestJWT_Garbage(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	if _, err := issuer.ParseAccessToken("not.a.token"); err == nil {
		t.Fatal("garbage token must not parse")
	}
}
