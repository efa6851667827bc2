package platform

import (
	"golang.org/x/net/html"

	"github.com/use-agent/solvewatch/models"
)

// Detect combines URL matching and DOM marker checking into one
// classification decision.
//
// isSubmissionPage is true when the URL matches the platform's dedicated
// submission pattern set OR when the page is a problem page. The OR is a
// heuristic, not a platform guarantee: problem pages carry inline
// run/submit panels on most platforms, so a verdict may appear there later
// even though some problem pages will never show one.
func Detect(rawURL string, doc *html.Node) models.PageClassification {
	id := MatchURL(rawURL)
	if id == models.PlatformNone {
		return models.PageClassification{Platform: models.PlatformNone}
	}

	p := Lookup(id)
	isProblem := MatchesProblemURL(id, rawURL) && HasMarker(doc, p.ProblemMarkers)
	return models.PageClassification{
		Platform:         id,
		IsProblemPage:    isProblem,
		IsSubmissionPage: isProblem || MatchesSubmissionURL(id, rawURL),
	}
}

// DetectURL classifies from the address alone, without a document. Marker
// confirmation is skipped, so a problem-URL match is taken at face value.
// Used for batch classification where fetching every page is not wanted.
func DetectURL(rawURL string) models.PageClassification {
	id := MatchURL(rawURL)
	if id == models.PlatformNone {
		return models.PageClassification{Platform: models.PlatformNone}
	}
	isProblem := MatchesProblemURL(id, rawURL)
	return models.PageClassification{
		Platform:         id,
		IsProblemPage:    isProblem,
		IsSubmissionPage: isProblem || MatchesSubmissionURL(id, rawURL),
	}
}
