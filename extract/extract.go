// Package extract reads problem metadata (title, difficulty, tags, and the
// statement itself) from platform pages. One strategy per platform; every
// strategy is best-effort and total: a page missing the expected elements
// yields empty fields, never an error.
package extract

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/solvewatch/models"
)

// maxTagLength bounds accepted tag text. Anything longer is almost
// certainly unrelated link text caught by a loose selector.
const maxTagLength = 50

// difficultyVocab is the normalized difficulty vocabulary shared by the
// class-name and free-text fallbacks.
var difficultyVocab = []string{"easy", "medium", "hard"}

// Extractor is one platform's metadata extraction strategy.
type Extractor interface {
	Extract(doc *goquery.Document, pageURL string) *models.ProblemMetadata
}

var registry = map[models.PlatformID]Extractor{
	models.PlatformLeetCode:   &leetcodeExtractor{},
	models.PlatformCodeforces: &codeforcesExtractor{},
	models.PlatformGfG:        &gfgExtractor{},
}

// For returns the extractor for a platform, or false when no strategy
// exists (including PlatformNone).
func For(id models.PlatformID) (Extractor, bool) {
	ex, ok := registry[id]
	return ex, ok
}

// Run selects and runs the platform's strategy. Extraction is an
// enrichment, not a critical path: when no strategy exists, or the
// strategy panics on unexpected markup, the empty metadata shape annotated
// with platform and URL comes back instead of an error.
func Run(id models.PlatformID, doc *goquery.Document, pageURL string) (meta *models.ProblemMetadata) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("metadata extraction panicked, degrading to empty metadata",
				"platform", id, "url", pageURL, "panic", r)
			meta = models.EmptyMetadata(id, pageURL)
		}
	}()

	ex, ok := For(id)
	if !ok || doc == nil {
		return models.EmptyMetadata(id, pageURL)
	}
	return ex.Extract(doc, pageURL)
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty element, trying selectors in order.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// titleFromSlug derives a human-readable title from the URL path segment
// following marker (e.g. "/problems/two-sum/" with marker "problems"
// becomes "Two Sum"). Returns empty when the segment is absent.
func titleFromSlug(pageURL, marker string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg != marker || i+1 >= len(segments) {
			continue
		}
		slug := segments[i+1]
		words := strings.FieldsFunc(slug, func(r rune) bool {
			return r == '-' || r == '_'
		})
		for j, w := range words {
			if w == "" {
				continue
			}
			words[j] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	}
	return ""
}

// normalizeDifficulty matches free text (or a class attribute) against the
// fixed easy/medium/hard vocabulary, case-insensitively. Unrecognized text
// yields empty.
func normalizeDifficulty(text string) string {
	lower := strings.ToLower(text)
	for _, d := range difficultyVocab {
		if strings.Contains(lower, d) {
			return d
		}
	}
	return ""
}

// collectTags gathers trimmed tag texts from a selection, deduplicating by
// exact match in first-seen order and discarding oversized entries.
func collectTags(sel *goquery.Selection) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	sel.Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || len(text) > maxTagLength {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		tags = append(tags, text)
	})
	return tags
}
