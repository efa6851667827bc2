// Package watch drives the headless browser: it opens coding-practice
// pages, classifies them, extracts problem metadata, and bridges each
// page's DOM mutation stream into an observer session that detects
// submission verdicts.
package watch

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"golang.org/x/net/html"

	"github.com/use-agent/solvewatch/config"
	"github.com/use-agent/solvewatch/extract"
	"github.com/use-agent/solvewatch/fetch"
	"github.com/use-agent/solvewatch/models"
	"github.com/use-agent/solvewatch/platform"
	"github.com/use-agent/solvewatch/report"
)

// Watcher manages the browser and all active page watches.
// Safe for concurrent use.
type Watcher struct {
	browser     *rod.Browser
	fetchPool   rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	fetchCfg    config.FetchConfig
	observerCfg config.ObserverConfig
	sinks       *report.Router

	mu       sync.Mutex
	watches  map[string]*Watch
	starting int
}

// NewWatcher launches a headless browser and initialises the watch
// registry and the tab pool used for one-shot fetches.
func NewWatcher(browserCfg config.BrowserConfig, fetchCfg config.FetchConfig, observerCfg config.ObserverConfig, sinks *report.Router) (*Watcher, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	// Keep Chrome from advertising automation or throttling background
	// tabs: a watched tab must keep delivering mutations while unfocused.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewWatchError(
			models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewWatchError(
			models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	return &Watcher{
		browser:     browser,
		fetchPool:   rod.NewPagePool(browserCfg.FetchPoolSize),
		browserCfg:  browserCfg,
		fetchCfg:    fetchCfg,
		observerCfg: observerCfg,
		sinks:       sinks,
		watches:     make(map[string]*Watch),
	}, nil
}

// StartWatch opens a page, classifies it, extracts metadata when it is a
// problem page, and, for submission contexts, arms the mutation observer
// for the rest of the watch's life.
func (w *Watcher) StartWatch(ctx context.Context, req *models.WatchRequest) (*Watch, error) {
	if err := w.reserveSlot(); err != nil {
		return nil, err
	}
	defer w.releaseSlot()

	page, err := w.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewWatchError(
			models.ErrCodeBrowserCrash, "failed to create page", err)
	}

	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr)
		}
	}

	watch := &Watch{
		ID:          newWatchID(),
		URL:         req.URL,
		page:        page,
		watcher:     w,
		observerCfg: w.observerCfg,
		sinks:       w.sinks,
		createdAt:   time.Now(),
		batches:     make(chan batchPayload, 64),
		done:        make(chan struct{}),
	}

	openTimeout := time.Duration(req.Timeout) * time.Second
	if openTimeout <= 0 {
		openTimeout = w.fetchCfg.NavigationTimeout
	}
	if err := watch.open(ctx, openTimeout); err != nil {
		_ = page.Close()
		return nil, err
	}

	w.mu.Lock()
	w.watches[watch.ID] = watch
	w.mu.Unlock()

	slog.Info("watch started",
		"watch_id", watch.ID, "url", watch.URL,
		"platform", watch.Classification().Platform)
	return watch, nil
}

// reserveSlot claims a watch slot. In-flight starts count against
// MaxWatches alongside registered watches, so concurrent StartWatch calls
// cannot overshoot the cap between the check and the registry insert.
func (w *Watcher) reserveSlot() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.watches)+w.starting >= w.browserCfg.MaxWatches {
		return models.NewWatchError(models.ErrCodeWatchLimit,
			"maximum concurrent watches reached", nil)
	}
	w.starting++
	return nil
}

func (w *Watcher) releaseSlot() {
	w.mu.Lock()
	w.starting--
	w.mu.Unlock()
}

// Get returns the watch with the given ID.
func (w *Watcher) Get(id string) (*Watch, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	watch, ok := w.watches[id]
	return watch, ok
}

// StopWatch tears down a watch and closes its tab.
func (w *Watcher) StopWatch(id string) bool {
	w.mu.Lock()
	watch, ok := w.watches[id]
	delete(w.watches, id)
	w.mu.Unlock()

	if !ok {
		return false
	}
	watch.stop()
	slog.Info("watch stopped", "watch_id", id, "url", watch.URL)
	return true
}

// Stats returns a snapshot of the watcher's current load.
func (w *Watcher) Stats() models.WatchStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return models.WatchStats{
		MaxWatches:    w.browserCfg.MaxWatches,
		ActiveWatches: len(w.watches),
	}
}

// FetchPage is the one-shot browser fetch used by the fetch dispatcher's
// rod engine: borrow a tab from the pool, navigate, wait for the DOM to
// settle, and return the rendered document.
func (w *Watcher) FetchPage(ctx context.Context, req *fetch.Request) (*fetch.Result, error) {
	timeout := req.Timeout
	if timeout <= 0 || timeout > w.fetchCfg.MaxTimeout {
		timeout = w.fetchCfg.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, acquireErr := w.fetchPool.Get(func() (*rod.Page, error) {
		return w.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewWatchError(
			models.ErrCodeBrowserCrash, "failed to acquire page from pool", acquireErr)
	}

	// Return the tab parked on about:blank so retained DOM does not pile
	// up across borrows. Uses the original page reference: cleanup must
	// succeed even after the request context expired.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("fetch cleanup: failed to navigate to about:blank", "error", navErr)
		}
		w.fetchPool.Put(page)
	}()

	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr)
		}
	}

	router := setupHijack(page)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if len(req.Headers) > 0 {
		if hdrErr := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(req.Headers)}).Call(p); hdrErr != nil {
			slog.Warn("failed to set extra headers", "error", hdrErr)
		}
	}

	if err := p.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr)
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &fetch.Result{
		HTML:     rawHTML,
		Title:    evalStringOrEmpty(p, `() => document.title`),
		FinalURL: finalURL,
	}, nil
}

// Classify fetches nothing: it parses the given document and runs the
// platform detector against it. Used by both the watch path and the
// classify API so the two agree on what a page is.
func Classify(rawURL, rawHTML string) (models.PageClassification, *html.Node) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		doc = nil
	}
	return platform.Detect(rawURL, doc), doc
}

// ExtractMetadata runs the platform's extraction strategy over raw HTML.
func ExtractMetadata(id models.PlatformID, rawURL, rawHTML string) *models.ProblemMetadata {
	doc, err := goqueryDocument(rawHTML)
	if err != nil {
		return models.EmptyMetadata(id, rawURL)
	}
	return extract.Run(id, doc, rawURL)
}

// Close tears down all watches, drains the fetch pool, and kills the
// browser process. Call on graceful shutdown to avoid zombie Chrome.
func (w *Watcher) Close() {
	w.mu.Lock()
	ids := make([]string, 0, len(w.watches))
	for id := range w.watches {
		ids = append(ids, id)
	}
	w.mu.Unlock()

	for _, id := range ids {
		w.StopWatch(id)
	}

	slog.Info("watcher shutting down: draining fetch pool")
	w.fetchPool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	slog.Info("watcher shutting down: closing browser")
	w.browser.MustClose()
	slog.Info("watcher shutdown complete")
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// newWatchID generates a short random identifier for a watch.
func newWatchID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return hex.EncodeToString(b[:])
}
