package sender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vunguard/ledger/internal/notification/domain"
)

func TestWebhookSenderPostsPayload(t *testing.T) {
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewWebhookSender(server.URL)
	notification := domain.NewNotification(1, domain.NotificationTypeTransaction,
		"Purchase confirmed", "Bought 10 units.")

	if err := s.Send(context.Background(), notification); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(payload["text"], "Purchase confirmed") ||
		!strings.Contains(payload["text"], "Bought 10 units.") {
		t.Fatalf("payload text = %q", payload["text"])
	}
}

func TestWebhookSenderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewWebhookSender(server.URL)
	notification := domain.NewNotification(1, domain.NotificationTypeSystem, "notice", "")

	if err := s.Send(context.Background(), notification); err == nil {
		t.Fatal("error status accepted")
	}
}
