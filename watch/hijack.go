package watch

import (
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/solvewatch/models"
)

// blockedResourceTypes are resource classes a watch never needs. Scripts
// and stylesheets stay enabled: judge pages render verdicts through them.
var blockedResourceTypes = map[proto.NetworkResourceType]bool{
	proto.NetworkResourceTypeImage: true,
	proto.NetworkResourceTypeFont:  true,
	proto.NetworkResourceTypeMedia: true,
}

// blockedURLFragments match trackers and ad networks that judge pages
// embed but never depend on for verdict rendering.
var blockedURLFragments = []string{
	"googletagmanager.com",
	"google-analytics.com",
	"doubleclick.net",
	"facebook.net",
	"hotjar.com",
	"clarity.ms",
}

// setupHijack installs request interception on the page, dropping heavy
// and tracking resources. Returns the running router; the caller must
// Stop it when the page is done.
func setupHijack(page *rod.Page) *rod.HijackRouter {
	router := page.HijackRequests()

	err := router.Add("*", "", func(ctx *rod.Hijack) {
		if blockedResourceTypes[ctx.Request.Type()] {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		reqURL := ctx.Request.URL().String()
		for _, fragment := range blockedURLFragments {
			if strings.Contains(reqURL, fragment) {
				ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		// Interception is an optimisation; the page still loads without it.
		return nil
	}

	go router.Run()
	return router
}

// categorizeError wraps raw errors into typed WatchErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.WatchError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewWatchError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewWatchError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewWatchError(models.ErrCodeNavigation, msg, err)
	}
}

// evalStringOrEmpty evaluates a JS expression on the page and returns its
// string result, or "" if evaluation fails.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// goqueryDocument parses raw HTML into a goquery document.
func goqueryDocument(rawHTML string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
}
