package report

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// WebhookSink posts events as JSON to an HTTP endpoint. The request body
// is signed with HMAC-SHA256 when a secret is configured:
//
//	X-Solvewatch-Signature: sha256=<hex>
//
// Delivery is asynchronous with up to 3 retries (1s, 5s, 30s), so a slow
// or flapping endpoint never backs up the mutation pipeline.
type WebhookSink struct {
	URL    string
	Secret string
	client *http.Client
}

// NewWebhookSink creates a WebhookSink for the given endpoint.
func NewWebhookSink(url, secret string) *WebhookSink {
	return &WebhookSink{
		URL:    url,
		Secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookSink) Name() string { return "webhook" }

// Deliver queues the event for async delivery and returns immediately.
func (w *WebhookSink) Deliver(_ context.Context, event *Event) error {
	go w.deliverWithRetry(event)
	return nil
}

func (w *WebhookSink) deliverWithRetry(event *Event) {
	delays := []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}
	for attempt, delay := range delays {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := w.post(ctx, event)
		cancel()
		if err == nil {
			slog.Debug("webhook delivered",
				"url", w.URL, "event", event.Type, "attempt", attempt+1)
			return
		}
		slog.Warn("webhook delivery failed",
			"url", w.URL, "event", event.Type, "attempt", attempt+1, "error", err)
	}
	slog.Error("webhook delivery exhausted all retries",
		"url", w.URL, "event", event.Type)
}

func (w *WebhookSink) post(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Solvewatch-Webhook/1.0")

	if w.Secret != "" {
		mac := hmac.New(sha256.New, []byte(w.Secret))
		mac.Write(body)
		req.Header.Set("X-Solvewatch-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
