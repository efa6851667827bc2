package extract

import (
	"log/slog"
	nurl "net/url"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// maxExcerptLength bounds the plain-text excerpt attached to metadata.
const maxExcerptLength = 300

// mdConverter is created once and reused; the converter is goroutine-safe.
var mdConverter = sync.OnceValue(func() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			// Examples and constraints on problem pages are frequently
			// tabular; keep the structure, minimally padded.
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
})

// statementMarkdown converts the problem-statement container to Markdown
// and derives a short plain-text excerpt. Both are best-effort enrichment:
// any failure, or an absent container, yields empty strings.
//
// The excerpt prefers readability on the container (it strips boilerplate
// and example blocks well); when readability declines, the raw container
// text is truncated instead.
func statementMarkdown(doc *goquery.Document, pageURL, containerSel string) (string, string) {
	container := doc.Find(containerSel).First()
	if container.Length() == 0 {
		return "", ""
	}

	rawHTML, err := goquery.OuterHtml(container)
	if err != nil || strings.TrimSpace(rawHTML) == "" {
		return "", ""
	}

	markdown, err := mdConverter().ConvertString(rawHTML, converter.WithDomain(pageURL))
	if err != nil {
		slog.Debug("statement markdown conversion failed",
			"url", pageURL, "error", err)
		markdown = ""
	}

	return strings.TrimSpace(markdown), excerptOf(rawHTML, container, pageURL)
}

func excerptOf(rawHTML string, container *goquery.Selection, pageURL string) string {
	if u, err := nurl.Parse(pageURL); err == nil {
		if article, err := readability.FromReader(strings.NewReader(rawHTML), u); err == nil {
			if ex := strings.TrimSpace(article.Excerpt); ex != "" {
				return truncate(ex, maxExcerptLength)
			}
			if text := strings.TrimSpace(article.TextContent); text != "" {
				return truncate(text, maxExcerptLength)
			}
		}
	}
	return truncate(strings.TrimSpace(container.Text()), maxExcerptLength)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "…"
}
