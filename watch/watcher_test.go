package watch

import (
	"errors"
	"testing"

	"github.com/use-agent/solvewatch/config"
	"github.com/use-agent/solvewatch/models"
)

func TestReserveSlot_CapsConcurrentStarts(t *testing.T) {
	w := &Watcher{
		browserCfg: config.BrowserConfig{MaxWatches: 2},
		watches:    make(map[string]*Watch),
	}

	if err := w.reserveSlot(); err != nil {
		t.Fatalf("first reservation should succeed: %v", err)
	}
	if err := w.reserveSlot(); err != nil {
		t.Fatalf("second reservation should succeed: %v", err)
	}

	// Neither start has registered its watch yet; the cap must still hold.
	err := w.reserveSlot()
	if err == nil {
		t.Fatal("reservation past MaxWatches must be rejected")
	}
	var werr *models.WatchError
	if !errors.As(err, &werr) || werr.Code != models.ErrCodeWatchLimit {
		t.Errorf("expected %s, got %v", models.ErrCodeWatchLimit, err)
	}

	w.releaseSlot()
	if err := w.reserveSlot(); err != nil {
		t.Errorf("a released slot should be reusable: %v", err)
	}
}

func TestReserveSlot_CountsRegisteredWatches(t *testing.T) {
	w := &Watcher{
		browserCfg: config.BrowserConfig{MaxWatches: 2},
		watches:    map[string]*Watch{"w1": {ID: "w1"}},
	}

	if err := w.reserveSlot(); err != nil {
		t.Fatalf("one registered watch leaves one slot: %v", err)
	}
	if err := w.reserveSlot(); err == nil {
		t.Error("registered watch plus in-flight start fills the cap")
	}
}
