package report

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookPost_SignsAndDelivers(t *testing.T) {
	const secret = "test-secret"

	var gotBody []byte
	var gotSignature, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get("X-Solvewatch-Signature")
		gotContentType = r.Header.Get("Content-Type")
		rw.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, secret)
	event := &Event{
		Type:      EventSolveDetected,
		WatchID:   "abc123",
		URL:       "https://leetcode.com/problems/two-sum/",
		Timestamp: 1700000000000,
		Data:      map[string]int{"attempts": 2},
	}

	if err := sink.post(context.Background(), event); err != nil {
		t.Fatalf("post failed: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var received Event
	if err := json.Unmarshal(gotBody, &received); err != nil {
		t.Fatalf("body is not a JSON event: %v", err)
	}
	if received.Type != EventSolveDetected || received.WatchID != "abc123" {
		t.Errorf("delivered event = %+v", received)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSignature != want {
		t.Errorf("signature = %q, want %q", gotSignature, want)
	}
}

func TestWebhookPost_NoSecretNoSignature(t *testing.T) {
	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Solvewatch-Signature")
		rw.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "")
	if err := sink.post(context.Background(), &Event{Type: EventPageClassified}); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if gotSignature != "" {
		t.Errorf("unsigned sink must not set a signature header, got %q", gotSignature)
	}
}

func TestWebhookPost_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "")
	if err := sink.post(context.Background(), &Event{Type: EventPageClassified}); err == nil {
		t.Error("a 5xx response must surface as an error")
	}
}

func TestRouterPublish_SinkFailureDoesNotStopDelivery(t *testing.T) {
	delivered := false
	router := NewRouter(failingSink{}, funcSink{fn: func() { delivered = true }})

	router.Publish(&Event{Type: EventProblemExtracted, URL: "https://example.com"})

	if !delivered {
		t.Error("a failing sink must not block delivery to the next sink")
	}
}

func TestRouterPublish_FillsTimestamp(t *testing.T) {
	var got int64
	router := NewRouter(captureSink{ts: &got})

	router.Publish(&Event{Type: EventPageClassified})
	if got == 0 {
		t.Error("Publish should stamp events that carry no timestamp")
	}
}

type failingSink struct{}

func (failingSink) Name() string { return "failing" }
func (failingSink) Deliver(context.Context, *Event) error {
	return context.DeadlineExceeded
}

type funcSink struct{ fn func() }

func (funcSink) Name() string { return "func" }
func (s funcSink) Deliver(context.Context, *Event) error {
	s.fn()
	return nil
}

type captureSink struct{ ts *int64 }

func (captureSink) Name() string { return "capture" }
func (s captureSink) Deliver(_ context.Context, e *Event) error {
	*s.ts = e.Timestamp
	return nil
}
