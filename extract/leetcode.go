package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/solvewatch/models"
)

// leetcodeExtractor reads metadata from LeetCode problem pages.
//
// LeetCode encodes difficulty in a utility class (text-difficulty-easy /
// -medium / -hard) rather than in visible text, so the class attribute is
// the primary source and element text the fallback.
type leetcodeExtractor struct{}

func (e *leetcodeExtractor) Extract(doc *goquery.Document, pageURL string) *models.ProblemMetadata {
	meta := models.EmptyMetadata(models.PlatformLeetCode, pageURL)

	meta.Title = firstText(doc,
		`div[data-cy="question-title"]`,
		`.text-title-large a`,
		`.text-title-large`,
	)
	if meta.Title == "" {
		meta.Title = titleFromSlug(pageURL, "problems")
	}
	// Titles rendered as "1. Two Sum" keep only the name part.
	if idx := strings.Index(meta.Title, ". "); idx > 0 && isDigits(meta.Title[:idx]) {
		meta.Title = meta.Title[idx+2:]
	}

	meta.Difficulty = e.difficulty(doc)
	meta.Tags = collectTags(doc.Find(`a[href^="/tag/"], a[href^="/problem-list/"]`))

	statement, excerpt := statementMarkdown(doc, pageURL, `div[data-track-load="description_content"]`)
	meta.Statement = statement
	meta.Excerpt = excerpt
	return meta
}

func (e *leetcodeExtractor) difficulty(doc *goquery.Document) string {
	// Primary: the difficulty utility class.
	var fromClass string
	doc.Find(`[class*="text-difficulty-"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok {
			if d := normalizeDifficulty(class); d != "" {
				fromClass = d
				return false
			}
		}
		return true
	})
	if fromClass != "" {
		return fromClass
	}

	// Fallback: visible text in any difficulty-ish element.
	return normalizeDifficulty(firstText(doc, `div[class*="difficulty"]`, `div[diff]`))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
