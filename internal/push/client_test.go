package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend(t *testing.T) {
	var got message
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"success": 2, "failure": 1}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, "server-key", srv.Client())

	success, failure, err := client.Send(context.Background(), []string{"t1", "t2", "t3"}, "New event", "Morning Run is live")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if success != 2 || failure != 1 {
		t.Errorf("counts = %d/%d, want 2/1", success, failure)
	}
	if gotAuth != "key=server-key" {
		t.Errorf("authorization = %q, want key=server-key", gotAuth)
	}
	if len(got.RegistrationIDs) != 3 {
		t.Errorf("registration_ids = %v, want 3 tokens", got.RegistrationIDs)
	}
	if got.Notification.Title != "New event" || got.Notification.Body != "Morning Run is live" {
		t.Errorf("notification = %+v", got.Notification)
	}
}

func TestSendNoTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called with no tokens")
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, "server-key", srv.Client())
	success, failure, err := client.Send(context.Background(), nil, "title", "body")
	if err != nil || success != 0 || failure != 0 {
		t.Fatalf("got %d/%d, %v; want 0/0, nil", success, failure, err)
	}
}

func TestSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, "server-key", srv.Client())
	_, failure, err := client.Send(context.Background(), []string{"t1", "t2"}, "title", "body")
	if err == nil {
		t.Fatal("want error on non-2xx response")
	}
	if failure != 2 {
		t.Errorf("failure = %d, want 2", failure)
	}
}
