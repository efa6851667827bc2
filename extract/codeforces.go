package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/solvewatch/models"
)

// ratingToken matches Codeforces difficulty ratings as rendered in the tag
// sidebar, e.g. "*1500".
var ratingToken = regexp.MustCompile(`^\*\d{3,4}$`)

// problemIndex matches the "A." / "B1." prefix on Codeforces titles.
var problemIndex = regexp.MustCompile(`^[A-Z]\d?\.\s+`)

// codeforcesExtractor reads metadata from Codeforces problem pages.
// Difficulty on Codeforces is a numeric rating carried in the tag list as
// a "*<n>" token, not an easy/medium/hard word.
type codeforcesExtractor struct{}

func (e *codeforcesExtractor) Extract(doc *goquery.Document, pageURL string) *models.ProblemMetadata {
	meta := models.EmptyMetadata(models.PlatformCodeforces, pageURL)

	title := firstText(doc,
		`.problem-statement .header .title`,
		`.problem-statement .title`,
	)
	meta.Title = problemIndex.ReplaceAllString(title, "")
	if meta.Title == "" {
		meta.Title = titleFromSlug(pageURL, "problem")
	}

	// The tag sidebar mixes algorithmic tags with the rating token; the
	// rating becomes the difficulty, the rest become tags.
	rawTags := collectTags(doc.Find(`span.tag-box`))
	tags := []string{}
	for _, t := range rawTags {
		if ratingToken.MatchString(strings.TrimSpace(t)) {
			if meta.Difficulty == "" {
				meta.Difficulty = strings.TrimSpace(t)
			}
			continue
		}
		tags = append(tags, t)
	}
	meta.Tags = tags

	statement, excerpt := statementMarkdown(doc, pageURL, `.problem-statement`)
	meta.Statement = statement
	meta.Excerpt = excerpt
	return meta
}
