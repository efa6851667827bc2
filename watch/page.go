package watch

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/use-agent/solvewatch/config"
	"github.com/use-agent/solvewatch/models"
	"github.com/use-agent/solvewatch/observer"
	"github.com/use-agent/solvewatch/report"
	"github.com/use-agent/solvewatch/simhash"
	"github.com/use-agent/solvewatch/verdict"
)

// mutationBinding is the name the injected observer calls back on.
const mutationBinding = "__swEmit"

// mutationObserverJS collects added element nodes (and non-blank text
// nodes, wrapped in a span so they survive outerHTML serialisation) from
// each mutation burst and posts them with the current location. Verdict
// panels sometimes swap text in place rather than adding nodes, so
// characterData mutations re-post the target's text too.
const mutationObserverJS = `() => {
	if (window.__swObserver) { return; }
	const wrapText = (text) => {
		const span = document.createElement('span');
		span.textContent = text;
		return span.outerHTML;
	};
	window.__swObserver = new MutationObserver((records) => {
		const nodes = [];
		for (const m of records) {
			if (m.type === 'childList') {
				for (const n of m.addedNodes) {
					if (n.nodeType === 1) {
						nodes.push(n.outerHTML);
					} else if (n.nodeType === 3 && n.textContent.trim()) {
						nodes.push(wrapText(n.textContent));
					}
				}
			} else if (m.type === 'characterData' && m.target.textContent.trim()) {
				nodes.push(wrapText(m.target.textContent));
			}
		}
		if (nodes.length === 0) { return; }
		window.__swEmit(JSON.stringify({ href: location.href, nodes: nodes }));
	});
	// At new-document evaluation time documentElement may not exist yet;
	// observing the document node covers the whole tree either way.
	window.__swObserver.observe(document.documentElement || document, {
		childList: true,
		subtree: true,
		characterData: true,
	});
}`

// observerBootstrap wraps the observer function as a self-executing script
// suitable for Page.addScriptToEvaluateOnNewDocument, which takes a raw
// source, not a function expression.
func observerBootstrap() string {
	return "(" + mutationObserverJS + ")();"
}

// batchPayload is one mutation burst as posted by the injected observer.
type batchPayload struct {
	Href  string   `json:"href"`
	Nodes []string `json:"nodes"`
}

// Watch is one observed browser tab. Mutation batches are funneled
// through a single channel and consumed by one goroutine, so session
// updates and route-change handling never race.
type Watch struct {
	ID  string
	URL string

	page        *rod.Page
	watcher     *Watcher
	observerCfg config.ObserverConfig
	sinks       *report.Router
	createdAt   time.Time

	batches chan batchPayload
	done    chan struct{}

	stopOnce  sync.Once
	router    *rod.HijackRouter
	stopEvent context.CancelFunc

	mu             sync.Mutex
	classification models.PageClassification
	metadata       *models.ProblemMetadata
	currentURL     string
	fingerprint    uint64
	session        *observer.Session
}

// open navigates the tab, classifies the landing page, extracts problem
// metadata, and arms the mutation observer. Called once per watch.
func (w *Watch) open(ctx context.Context, timeout time.Duration) error {
	w.router = setupHijack(w.page)

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := w.page.Context(navCtx)
	if err := p.Navigate(w.URL); err != nil {
		return categorizeError(err, "navigation to target URL failed")
	}
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"watch_id", w.ID, "error", stableErr)
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return categorizeError(htmlErr, "failed to extract page HTML")
	}
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = w.URL
	}

	w.applyClassification(finalURL, rawHTML)

	go w.consumeBatches()
	go w.arm()
	return nil
}

// applyClassification classifies raw HTML for the given URL, refreshes the
// watch state, and emits the page.classified (and, for problem pages,
// problem.extracted) events.
func (w *Watch) applyClassification(pageURL, rawHTML string) {
	cls, _ := Classify(pageURL, rawHTML)
	fp := simhash.FingerprintDOM(rawHTML)

	var meta *models.ProblemMetadata
	if cls.IsProblemPage {
		meta = ExtractMetadata(cls.Platform, pageURL, rawHTML)
	}

	var session *observer.Session
	if cls.IsSubmissionPage {
		if det, ok := verdict.For(cls.Platform); ok {
			session = observer.NewSession(det,
				observer.WithCooldowns(w.observerCfg.AttemptCooldown, w.observerCfg.SolveCooldown))
		}
	}

	w.mu.Lock()
	w.classification = cls
	w.metadata = meta
	w.currentURL = pageURL
	w.fingerprint = fp
	w.session = session
	w.mu.Unlock()

	w.sinks.Publish(&report.Event{
		Type:    report.EventPageClassified,
		WatchID: w.ID,
		URL:     pageURL,
		Data:    cls,
	})
	if meta != nil {
		w.sinks.Publish(&report.Event{
			Type:    report.EventProblemExtracted,
			WatchID: w.ID,
			URL:     pageURL,
			Data:    meta,
		})
	}
}

// arm waits out the attach delay (skipping the page's initial render
// churn) and then installs the JS-to-Go mutation bridge.
func (w *Watch) arm() {
	select {
	case <-time.After(w.observerCfg.AttachDelay):
	case <-w.done:
		return
	}

	if err := (proto.RuntimeAddBinding{Name: mutationBinding}).Call(w.page); err != nil {
		slog.Warn("failed to add mutation binding", "watch_id", w.ID, "error", err)
		return
	}

	eventCtx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.stopEvent = cancel
	w.mu.Unlock()

	wait := w.page.Context(eventCtx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != mutationBinding {
			return
		}
		var payload batchPayload
		if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
			slog.Warn("malformed mutation payload", "watch_id", w.ID, "error", err)
			return
		}
		select {
		case w.batches <- payload:
		case <-w.done:
		default:
			// Channel full: the page is mutating faster than the consumer
			// drains. Dropping a burst is safe, the next verdict render
			// produces another.
			slog.Debug("mutation batch dropped", "watch_id", w.ID)
		}
	})
	go wait()

	// The binding survives hard navigations but the JS observer does not:
	// server-rendered platforms (Codeforces) navigate to a status page on
	// submit, which tears down the document and everything injected into
	// it. Registering the script for new documents re-arms the bridge on
	// every load; the observer's own guard makes re-injection a no-op.
	if _, err := w.page.EvalOnNewDocument(observerBootstrap()); err != nil {
		slog.Warn("failed to register mutation observer for new documents",
			"watch_id", w.ID, "error", err)
	}
	if _, err := w.page.Eval(mutationObserverJS); err != nil {
		slog.Warn("failed to inject mutation observer", "watch_id", w.ID, "error", err)
		return
	}
	slog.Debug("mutation observer armed", "watch_id", w.ID, "url", w.URL)
}

// consumeBatches is the single consumer of the mutation channel.
func (w *Watch) consumeBatches() {
	for {
		select {
		case <-w.done:
			return
		case payload := <-w.batches:
			w.handleBatch(payload)
		}
	}
}

// handleBatch feeds one mutation burst to the active session, detecting
// soft navigations first: a changed location means the SPA swapped routes
// under us, so the batch describes churn, not verdicts.
func (w *Watch) handleBatch(payload batchPayload) {
	w.mu.Lock()
	currentURL := w.currentURL
	session := w.session
	w.mu.Unlock()

	if payload.Href != "" && payload.Href != currentURL {
		w.handleRouteChange(payload.Href)
		return
	}
	if session == nil {
		return
	}

	nodes := parseFragments(payload.Nodes)
	if len(nodes) == 0 {
		return
	}
	if ev := session.HandleBatch(nodes); ev != nil {
		w.sinks.Publish(&report.Event{
			Type:    report.EventSolveDetected,
			WatchID: w.ID,
			URL:     currentURL,
			Data:    ev,
		})
	}
}

// handleRouteChange re-reads the page after a soft navigation. A new URL
// with an unchanged DOM structure (tab switches, anchors, query params) is
// recorded but keeps the running session; a structural swap means a new
// page context, so the watch re-classifies and starts over.
func (w *Watch) handleRouteChange(newURL string) {
	rawHTML, err := w.page.HTML()
	if err != nil {
		slog.Warn("route change: failed to read page HTML",
			"watch_id", w.ID, "url", newURL, "error", err)
		return
	}

	w.mu.Lock()
	prevFP := w.fingerprint
	w.mu.Unlock()

	if !simhash.RouteChanged(prevFP, simhash.FingerprintDOM(rawHTML)) {
		w.mu.Lock()
		w.currentURL = newURL
		w.mu.Unlock()
		slog.Debug("soft navigation without structural change",
			"watch_id", w.ID, "url", newURL)
		return
	}

	slog.Info("route change detected, re-classifying",
		"watch_id", w.ID, "url", newURL)
	w.applyClassification(newURL, rawHTML)
}

// Status reports the watch's current state.
func (w *Watch) Status() models.WatchStatusResponse {
	w.mu.Lock()
	cls := w.classification
	url := w.currentURL
	session := w.session
	w.mu.Unlock()

	resp := models.WatchStatusResponse{
		Success:        true,
		WatchID:        w.ID,
		URL:            url,
		Classification: cls,
		Observing:      session != nil,
	}
	if session != nil {
		resp.Attempts, resp.Solved, resp.ElapsedSec, resp.LastSolve = session.Snapshot()
	}
	return resp
}

// Classification returns the current page classification.
func (w *Watch) Classification() models.PageClassification {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.classification
}

// Metadata returns the extracted problem metadata, nil when the current
// page is not a problem page.
func (w *Watch) Metadata() *models.ProblemMetadata {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metadata
}

// stop tears down the event listener, the hijack router, and the tab.
func (w *Watch) stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		cancel := w.stopEvent
		w.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		if w.router != nil {
			_ = w.router.Stop()
		}
		if err := w.page.Close(); err != nil {
			slog.Warn("failed to close page", "watch_id", w.ID, "error", err)
		}
	})
}

// parseFragments parses serialized HTML fragments into nodes, skipping
// fragments that fail to parse.
func parseFragments(fragments []string) []*html.Node {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	var out []*html.Node
	for _, fragment := range fragments {
		nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
		if err != nil {
			continue
		}
		out = append(out, nodes...)
	}
	return out
}
