package fetch

import (
	"context"
	"fmt"
)

// RodFetchFunc wraps the watcher's one-shot browser fetch. Injected from
// main to avoid an import cycle (fetch/ never imports watch/).
type RodFetchFunc func(ctx context.Context, req *Request) (*Result, error)

// RodEngine is the browser-based engine: slower, but sees the page after
// JavaScript renders it.
type RodEngine struct {
	fetchFunc RodFetchFunc
}

// NewRodEngine creates a RodEngine around the injected browser callback.
func NewRodEngine(fetchFunc RodFetchFunc) *RodEngine {
	return &RodEngine{fetchFunc: fetchFunc}
}

func (e *RodEngine) Name() string { return "rod" }

func (e *RodEngine) Fetch(ctx context.Context, req *Request) (*Result, error) {
	if e.fetchFunc == nil {
		return nil, fmt.Errorf("rod: fetchFunc not configured")
	}

	result, err := e.fetchFunc(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rod: %w", err)
	}
	result.EngineName = e.Name()
	return result, nil
}
