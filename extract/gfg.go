package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/solvewatch/models"
)

// trailingID strips the numeric dedupe suffix GfG appends to problem
// slugs (e.g. "kadanes-algorithm-1587115620"). Applied after the slug is
// turned into words, so the suffix shows up as a trailing number.
var trailingID = regexp.MustCompile(`\s+\d+$`)

// gfgExtractor reads metadata from GeeksforGeeks practice pages. GfG's
// class names are build-hashed and churn between deploys, so the selectors
// lean on stable substrings and the URL slug carries most of the weight.
type gfgExtractor struct{}

func (e *gfgExtractor) Extract(doc *goquery.Document, pageURL string) *models.ProblemMetadata {
	meta := models.EmptyMetadata(models.PlatformGfG, pageURL)

	meta.Title = firstText(doc,
		`div[class*="problems_header_content__title"] h3`,
		`div[class*="problems_header_content"] h3`,
		`.problem-tab h1`,
	)
	if meta.Title == "" {
		meta.Title = trailingID.ReplaceAllString(titleFromSlug(pageURL, "problems"), "")
	}

	// GfG renders difficulty as free text ("Difficulty: Medium"); only
	// the easy/medium/hard vocabulary is kept ("Basic"/"School" yield
	// empty).
	meta.Difficulty = normalizeDifficulty(firstText(doc,
		`div[class*="problems_header_description"] span strong`,
		`span[class*="difficulty"]`,
		`div[class*="difficulty"]`,
	))

	meta.Tags = collectTags(doc.Find(
		`div[class*="problems_tag_container"] a, a[href*="/explore?category"]`,
	))

	statement, excerpt := statementMarkdown(doc, pageURL, `div[class*="problems_problem_content"]`)
	meta.Statement = statement
	meta.Excerpt = excerpt
	return meta
}
