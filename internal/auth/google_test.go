package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") != "good-token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"aud": "client-123",
			"sub": "g-42",
			"email": "Alice@Example.com",
			"name": "Alice Van Doe",
			"picture": "https://example.com/p.jpg"
		}`))
	}))
	defer srv.Close()

	v := NewGoogleVerifierWithEndpoint("client-123", srv.URL, srv.Client())

	identity, err := v.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", identity.Email)
	}
	if identity.GoogleID != "g-42" {
		t.Errorf("googleId = %q, want g-42", identity.GoogleID)
	}
	if identity.FirstName != "Alice" || identity.LastName != "Van Doe" {
		t.Errorf("name split = %q / %q, want Alice / Van Doe", identity.FirstName, identity.LastName)
	}
}

func TestGoogleVerifyRejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id_token") {
		case "wrong-aud":
			_, _ = w.Write([]byte(`{"aud": "someone-else", "sub": "g-1", "email": "a@b.com"}`))
		case "incomplete":
			_, _ = w.Write([]byte(`{"aud": "client-123"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	v := NewGoogleVerifierWithEndpoint("client-123", srv.URL, srv.Client())

	for _, token := range []string{"wrong-aud", "incomplete", "rejected"} {
		if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrGoogleToken) {
			t.Errorf("token %q: want ErrGoogleToken, got %v", token, err)
		}
	}
}
