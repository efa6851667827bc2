// Package verdict recognizes submission verdicts in batches of newly added
// DOM nodes. Two classifiers cooperate per platform: the attempt classifier
// fires on any judged outcome, the success classifier only on full
// acceptance.
package verdict

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/solvewatch/models"
	"github.com/use-agent/solvewatch/platform"
)

// Detector classifies one mutation batch worth of added nodes.
type Detector interface {
	// IsAttempt reports whether the batch contains any verdict signal,
	// regardless of outcome.
	IsAttempt(nodes []*html.Node) bool

	// IsSuccess reports whether the batch specifically indicates full
	// acceptance. Stricter than IsAttempt.
	IsSuccess(nodes []*html.Node) bool
}

// For returns the verdict detector for a platform, or false when the
// platform has no strategy (including PlatformNone).
func For(id models.PlatformID) (Detector, bool) {
	p := platform.Lookup(id)
	if p == nil {
		return nil, false
	}
	return &profileDetector{prof: p}, true
}

// profileDetector is the single table-driven implementation; all
// platform-specific behavior lives in the platform profile.
type profileDetector struct {
	prof *platform.Profile
}

func (d *profileDetector) IsAttempt(nodes []*html.Node) bool {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if d.textMatches(n, d.prof.AttemptVocab) {
			return true
		}
		if hasClassMarker(n, d.prof.VerdictClassMarkers) {
			return true
		}
	}
	return false
}

func (d *profileDetector) IsSuccess(nodes []*html.Node) bool {
	// Prefer dedicated result containers when any exist in the batch:
	// loose text matching picks up unrelated page chrome.
	if containers := d.findContainers(nodes); len(containers) > 0 {
		for _, c := range containers {
			if d.textMatches(c, d.prof.SuccessVocab) {
				return true
			}
		}
		return false
	}

	for _, n := range nodes {
		if n == nil {
			continue
		}
		if d.textMatches(n, d.prof.SuccessVocab) {
			return true
		}
	}
	return false
}

// findContainers collects result-container elements inside the batch's
// subtrees, tolerating selectors that fail to parse.
func (d *profileDetector) findContainers(nodes []*html.Node) []*html.Node {
	var found []*html.Node
	for _, sel := range d.prof.ResultContainers {
		matcher, err := cascadia.Parse(sel)
		if err != nil {
			continue
		}
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if n.Type == html.ElementNode && matcher.Match(n) {
				found = append(found, n)
			}
			found = append(found, cascadia.QueryAll(n, matcher)...)
		}
	}
	return found
}

// textMatches walks the subtree and checks every text node against the
// vocabulary. Segments matching an exclude pattern (the inline
// accepted-rate stats) never count.
func (d *profileDetector) textMatches(n *html.Node, vocab []string) bool {
	if len(vocab) == 0 {
		return false
	}
	match := false
	walkText(n, func(text string) bool {
		if d.excluded(text) {
			return true
		}
		for _, term := range vocab {
			if strings.Contains(text, term) {
				match = true
				return false
			}
		}
		return true
	})
	return match
}

func (d *profileDetector) excluded(text string) bool {
	for _, re := range d.prof.ExcludePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// walkText visits each non-empty trimmed text node in the subtree.
// The visitor returns false to stop the walk early.
func walkText(n *html.Node, visit func(string) bool) bool {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			return visit(text)
		}
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkText(c, visit) {
			return false
		}
	}
	return true
}

// hasClassMarker reports whether any element in the subtree carries a class
// attribute containing one of the marker substrings.
func hasClassMarker(n *html.Node, markers []string) bool {
	if len(markers) == 0 {
		return false
	}
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key != "class" {
				continue
			}
			for _, m := range markers {
				if strings.Contains(attr.Val, m) {
					return true
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasClassMarker(c, markers) {
			return true
		}
	}
	return false
}
