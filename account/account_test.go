package account

import (
	"testing"

	"blog/config"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(config.Account{Username: "admin", Password: "admin123", DisplayName: "Blog Admin"})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	return v
}

func TestCheck(t *testing.T) {
	v := newTestVerifier(t)

	tests := []struct {
		name     string
		username string
		password string
		expected bool
	}{
		{name: "Exact credentials", username: "admin", password: "admin123", expected: true},
		{name: "Wrong password", username: "admin", password: "admin1234", expected: false},
		{name: "Wrong username", username: "root", password: "admin123", expected: false},
		{name: "Username case differs", username: "Admin", password: "admin123", expected: false},
		{name: "Padded password", username: "admin", password: " admin123", expected: false},
		{name: "Empty", username: "", password: "", expected: false},
		{name: "SQL injection attempt", username: "admin' OR 1=1 --", password: "x", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Check(tt.username, tt.password); got != tt.expected {
				t.Errorf("Check(%q, %q) = %v, expected %v", tt.username, tt.password, got, tt.expected)
			}
		})
	}
}

func TestUserFallsBackToUsername(t *testing.T) {
	v, err := NewVerifier(config.Account{Username: "writer", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}
	if got := v.User(); got.Name != "writer" || got.Username != "writer" {
		t.Errorf("User() = %+v", got)
	}
}

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}
	b, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}
	if a == "" || a == b {
		t.Errorf("NewToken() returned %q and %q", a, b)
	}
}
