package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookChannelPostsPayload(t *testing.T) {
	var got gatewayPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel, err := NewWebhookChannel(server.URL)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	if err := channel.Send(context.Background(), "+441111", "alert body"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.To != "+441111" || got.Content != "alert body" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestWebhookChannelRejectsGatewayErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	channel, err := NewWebhookChannel(server.URL)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	if err := channel.Send(context.Background(), "+441111", "alert body"); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestWebhookChannelRequiresURL(t *testing.T) {
	if _, err := NewWebhookChannel(""); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestWebhookChannelRequiresRecipient(t *testing.T) {
	channel, err := NewWebhookChannel("http://gateway.local/send")
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	if err := channel.Send(context.Background(), "", "alert body"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}
