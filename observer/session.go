// Package observer tracks submission activity on one watched page: it
// counts attempts, debounces render bursts with cooldown windows, and
// emits a solve event when the verdict detector reports acceptance.
package observer

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/use-agent/solvewatch/models"
	"github.com/use-agent/solvewatch/verdict"
)

// Cooldown and delay defaults. Verdict panels mutate several times while
// rendering (placeholder, spinner, final text), so both counters need
// debounce windows sized above a render burst but below human-perceptible
// latency.
const (
	DefaultAttemptCooldown = 1500 * time.Millisecond
	DefaultSolveCooldown   = 3000 * time.Millisecond

	// DefaultAttachDelay is how long the watcher waits after navigation
	// before feeding batches, so the page's own initial render churn is
	// not mistaken for verdict activity.
	DefaultAttachDelay = 1500 * time.Millisecond
)

// Session is the per-page observation state. Construct one when a page is
// recognized as a submission context; the solve timer starts at
// construction and is never reset, so elapsed time measures first
// observation to first accepted verdict, not per-attempt time.
//
// HandleBatch is designed for strictly sequential delivery (the watcher
// feeds one mutation batch at a time); the mutex only exists so status
// queries from other goroutines see a consistent snapshot.
type Session struct {
	mu  sync.Mutex
	det verdict.Detector
	now func() time.Time

	startedAt       time.Time
	attempts        int
	lastAttemptAt   time.Time
	lastSolveAt     time.Time
	solved          bool
	lastSolve       *models.SolveEvent
	attemptCooldown time.Duration
	solveCooldown   time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithCooldowns overrides the default cooldown windows.
func WithCooldowns(attempt, solve time.Duration) Option {
	return func(s *Session) {
		s.attemptCooldown = attempt
		s.solveCooldown = solve
	}
}

// NewSession creates a Session and starts its solve timer.
func NewSession(det verdict.Detector, opts ...Option) *Session {
	s := &Session{
		det:             det,
		now:             time.Now,
		attemptCooldown: DefaultAttemptCooldown,
		solveCooldown:   DefaultSolveCooldown,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now()
	return s
}

// HandleBatch processes one mutation batch worth of added nodes and
// returns a SolveEvent when this batch produced a (non-suppressed)
// accepted verdict, nil otherwise.
//
// Per batch, the attempt counter increases by at most one: a verdict that
// fires both classifiers is counted once, and repeat renders of the same
// verdict within a cooldown window are absorbed.
func (s *Session) HandleBatch(nodes []*html.Node) *models.SolveEvent {
	if len(nodes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	counted := false
	if s.det.IsAttempt(nodes) && s.attemptAllowed(now) {
		s.attempts++
		s.lastAttemptAt = now
		counted = true
		slog.Debug("submission attempt counted", "attempts", s.attempts)
	}

	// Suppress duplicate solve emission from rapid successive mutations
	// describing the same verdict.
	if !s.lastSolveAt.IsZero() && now.Sub(s.lastSolveAt) < s.solveCooldown {
		return nil
	}

	if !s.det.IsSuccess(nodes) {
		return nil
	}

	// Make sure the accepted verdict is reflected in the counter without
	// double counting it when step above already took it as an attempt.
	if !counted && s.attemptAllowed(now) {
		s.attempts++
		s.lastAttemptAt = now
	}
	if s.attempts == 0 {
		s.attempts = 1
	}

	s.lastSolveAt = now
	s.solved = true

	// Rounded to the nearest whole second: 7.5s of solving reports 8.
	elapsed := int(math.Round(now.Sub(s.startedAt).Seconds()))
	ev := &models.SolveEvent{
		Solved:       true,
		Timestamp:    now.UnixMilli(),
		TimeSpentSec: elapsed,
		Attempts:     s.attempts,
	}
	s.lastSolve = ev
	slog.Info("solve detected", "attempts", ev.Attempts, "time_spent_sec", ev.TimeSpentSec)
	return ev
}

func (s *Session) attemptAllowed(now time.Time) bool {
	return s.lastAttemptAt.IsZero() || now.Sub(s.lastAttemptAt) >= s.attemptCooldown
}

// Snapshot returns the session's current counters for status reporting.
func (s *Session) Snapshot() (attempts int, solved bool, elapsedSec int, lastSolve *models.SolveEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := int(math.Round(s.now().Sub(s.startedAt).Seconds()))
	return s.attempts, s.solved, elapsed, s.lastSolve
}
