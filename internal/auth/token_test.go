package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Mint("acc-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != "acc-1" {
		t.Errorf("uid = %q, want acc-1", got)
	}
}

func TestTokenVerifyFailures(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Mint("acc-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	tests := []struct {
		name    string
		manager *TokenManager
		token   string
	}{
		{"wrong secret", NewTokenManager("other-secret", time.Hour), token},
		{"garbage", m, "not.a.token"},
		{"empty", m, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.manager.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestExpiredToken(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute)
	token, err := m.Mint("acc-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for expired token, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
