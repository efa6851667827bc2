// Package fetch retrieves page documents for one-shot classification. Two
// engines exist, a fast pure-HTTP engine with a browser-like TLS
// fingerprint and a headless-browser engine, raced by a dispatcher with
// staged escalation, since some platforms render problem content
// client-side and an HTTP fetch of them classifies wrong.
package fetch

import (
	"context"
	"time"
)

// Engine is the interface all fetch engines implement.
type Engine interface {
	// Name returns the engine identifier ("http", "rod").
	Name() string

	// Fetch retrieves the page document for the given request.
	Fetch(ctx context.Context, req *Request) (*Result, error)
}

// Request contains everything an engine needs to fetch a page.
type Request struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Stealth bool

	// Validate, when set, decides whether a fetched document is usable.
	// A result failing validation counts as an engine failure so the
	// race escalates to the next engine, typically because the HTTP
	// engine returned a shell page whose problem markers only appear
	// after JavaScript runs.
	Validate func(*Result) bool
}

// Result is the output of a successful engine fetch.
type Result struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}
