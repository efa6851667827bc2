// Package report delivers the pipeline's structured events (page
// classifications, problem metadata, solve events) to external consumers.
// The core only hands events to a Router; what happens to them (webhook,
// logs, storage) is the consumer's business.
package report

import (
	"context"
	"log/slog"
	"time"
)

// Event types emitted by the watcher.
const (
	EventPageClassified   = "page.classified"
	EventProblemExtracted = "problem.extracted"
	EventSolveDetected    = "solve.detected"
)

// Event is the payload delivered to sinks.
type Event struct {
	Type      string      `json:"type"`
	WatchID   string      `json:"watch_id,omitempty"`
	URL       string      `json:"url"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Sink receives events. Delivery errors are the sink's own concern to
// report; the router logs and moves on.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event *Event) error
}

// Router fans events out to all configured sinks.
type Router struct {
	sinks []Sink
}

// NewRouter creates a Router over the given sinks.
func NewRouter(sinks ...Sink) *Router {
	return &Router{sinks: sinks}
}

// Publish delivers the event to every sink. Failures are logged but do
// not stop delivery to the remaining sinks; reporting is never allowed
// to break observation.
func (r *Router) Publish(event *Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	for _, s := range r.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.Deliver(ctx, event); err != nil {
			slog.Warn("event delivery failed",
				"sink", s.Name(), "event", event.Type, "url", event.URL, "error", err)
		}
		cancel()
	}
}

// LogSink narrates events to the structured log. Always configured; the
// narration is diagnostic, not contractual.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(_ context.Context, event *Event) error {
	slog.Info("event",
		"type", event.Type,
		"watch_id", event.WatchID,
		"url", event.URL,
		"data", event.Data,
	)
	return nil
}
