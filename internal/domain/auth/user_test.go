package auth

import "testing"

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name@example.com", "x+tag@sub.domain.org"}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}
	invalid := []string{"", "plain", "a@b", "@b.co", "a@.co", "a@@b.co"}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}

func TestUserValidate(t *testing.T) {
	u := User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	if err := u.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := (User{Email: "a@b.co", PasswordHash: "h"}).Validate(); err == nil {
		t.Error("missing username should fail")
	}
	if err := (User{Username: "a", PasswordHash: "h"}).Validate(); err == nil {
		t.Error("missing email should fail")
	}
	if err := (User{Username: "a", Email: "bad", PasswordHash: "h"}).Validate(); err == nil {
		t.Error("bad email should fail")
	}
	if err := (User{Username: "a", Email: "a@b.co"}).Validate(); err == nil {
		t.Error("missing password hash should fail")
	}
}
