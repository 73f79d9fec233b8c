package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vunguard/ledger/internal/notification/domain"
)

// WebhookSender posts notifications to a fixed HTTP endpoint, e.g. an
// ops channel integration.
type WebhookSender struct {
	client *http.Client
	url    string
}

// NewWebhookSender creates a webhook push channel targeting url.
func NewWebhookSender(url string) domain.Sender {
	return &WebhookSender{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
}

func (s *WebhookSender) Send(ctx context.Context, notification *domain.Notification) error {
	payload := map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", notification.Title, notification.Content),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
