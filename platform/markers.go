package platform

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// HasMarker reports whether at least one of the CSS selectors resolves to
// an element in the document.
//
// An empty selector set returns true unconditionally: the platform has no
// reliable marker and the URL match is trusted on its own. A selector that
// fails to parse counts as a non-match and the remaining selectors are
// still evaluated; page content is platform-owned and can change under us,
// so marker checking never fails.
func HasMarker(doc *html.Node, selectors []string) bool {
	if len(selectors) == 0 {
		return true
	}
	if doc == nil {
		return false
	}
	for _, s := range selectors {
		sel, err := cascadia.Parse(s)
		if err != nil {
			continue
		}
		if cascadia.Query(doc, sel) != nil {
			return true
		}
	}
	return false
}
