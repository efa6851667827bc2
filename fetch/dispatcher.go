package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Dispatcher races the fetch engines with staged escalation: the fastest
// engine starts immediately, heavier ones join after their delay unless an
// earlier engine already produced a valid document.
type Dispatcher struct {
	engines          []Engine
	escalationDelays []time.Duration
	memory           *DomainMemory
}

// NewDispatcher creates a Dispatcher. engines[i] starts after
// escalationDelays[i] from the race beginning; the first delay should be 0.
func NewDispatcher(engines []Engine, escalationDelays []time.Duration, memory *DomainMemory) *Dispatcher {
	delays := make([]time.Duration, len(engines))
	copy(delays, escalationDelays)
	return &Dispatcher{
		engines:          engines,
		escalationDelays: delays,
		memory:           memory,
	}
}

// Dispatch runs the engine race for the given request and returns the
// first result that passes validation. If all engines fail, the last
// error comes back.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Result, error) {
	domain := extractDomain(req.URL)

	// A domain that needed the browser once will need it again; skip the
	// doomed HTTP attempt next time.
	if remembered := d.memory.Get(domain); remembered != "" {
		for _, eng := range d.engines {
			if eng.Name() != remembered {
				continue
			}
			slog.Debug("domain memory hit", "domain", domain, "engine", remembered)
			result, err := d.fetchValidated(ctx, eng, req)
			if err == nil {
				return result, nil
			}
			slog.Info("remembered engine failed, running full race",
				"domain", domain, "engine", remembered, "error", err)
			d.memory.Delete(domain)
			break
		}
	}

	return d.race(ctx, req, domain)
}

// Single runs exactly one engine by name, bypassing the race. Used when
// the caller pins the fetch mode.
func (d *Dispatcher) Single(ctx context.Context, name string, req *Request) (*Result, error) {
	for _, eng := range d.engines {
		if eng.Name() == name {
			return d.fetchValidated(ctx, eng, req)
		}
	}
	return nil, fmt.Errorf("no such fetch engine: %s", name)
}

// fetchValidated runs one engine and applies the request's validation.
func (d *Dispatcher) fetchValidated(ctx context.Context, eng Engine, req *Request) (*Result, error) {
	result, err := eng.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Validate != nil && !req.Validate(result) {
		return nil, fmt.Errorf("%s: document failed validation", eng.Name())
	}
	return result, nil
}

func (d *Dispatcher) race(ctx context.Context, req *Request, domain string) (*Result, error) {
	type raceResult struct {
		result *Result
		err    error
	}

	raceCtx, raceCancel := context.WithCancel(ctx)
	defer raceCancel()

	results := make(chan raceResult, len(d.engines))
	var wg sync.WaitGroup

	for i, eng := range d.engines {
		delay := d.escalationDelays[i]
		wg.Add(1)
		go func(e Engine, delay time.Duration) {
			defer wg.Done()

			if delay > 0 {
				select {
				case <-raceCtx.Done():
					return
				case <-time.After(delay):
				}
			}
			select {
			case <-raceCtx.Done():
				return
			default:
			}

			slog.Debug("engine starting", "engine", e.Name(), "url", req.URL)
			result, err := d.fetchValidated(raceCtx, e, req)
			if err != nil {
				slog.Debug("engine failed", "engine", e.Name(), "url", req.URL, "error", err)
			}
			results <- raceResult{result: result, err: err}
		}(eng, delay)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var lastErr error
	for r := range results {
		if r.err != nil {
			lastErr = r.err
			continue
		}
		raceCancel()
		d.memory.Set(domain, r.result.EngineName)
		slog.Debug("engine won race",
			"engine", r.result.EngineName, "url", req.URL)
		return r.result, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("all engines cancelled before producing a result")
	}
	return nil, fmt.Errorf("dispatch %s: %w", req.URL, lastErr)
}

// extractDomain pulls the host out of a URL for domain-memory keying.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
