package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/solvewatch/cache"
	"github.com/use-agent/solvewatch/fetch"
	"github.com/use-agent/solvewatch/models"
	"github.com/use-agent/solvewatch/platform"
	"github.com/use-agent/solvewatch/watch"
)

// Classify returns a handler for POST /api/v1/classify.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup (when max_age > 0).
//  3. Dispatcher fetch: HTTP raced against the browser in auto mode,
//     pinned to one engine otherwise. (records fetch_ms)
//  4. Classify the rendered document, extract metadata for problem pages.
//  5. Fill Timing, cache, return 200.
func Classify(d *fetch.Dispatcher, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ClassifyResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		cacheKey := cache.Key(req.URL, !req.SkipMetadata)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		fetchReq := &fetch.Request{
			URL:     req.URL,
			Timeout: time.Duration(req.Timeout) * time.Second,
		}
		if req.FetchMode == "auto" {
			// An HTTP fetch of a client-rendered judge page returns a shell
			// whose problem markers are missing. Treat that as a failed
			// fetch so the race escalates to the browser.
			fetchReq.Validate = markersConfirm
		}

		fetchStart := time.Now()
		var result *fetch.Result
		var err error
		switch req.FetchMode {
		case "http":
			result, err = d.Single(c.Request.Context(), "http", fetchReq)
		case "browser":
			result, err = d.Single(c.Request.Context(), "rod", fetchReq)
		default:
			result, err = d.Dispatch(c.Request.Context(), fetchReq)
		}
		fetchMs := time.Since(fetchStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			})
			return
		}

		finalURL := result.FinalURL
		if finalURL == "" {
			finalURL = req.URL
		}

		cls, _ := watch.Classify(finalURL, result.HTML)
		resp := &models.ClassifyResponse{
			Success:        true,
			Classification: cls,
			FinalURL:       finalURL,
			EngineUsed:     result.EngineName,
			Timing: models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			},
		}
		if cls.IsProblemPage && !req.SkipMetadata {
			resp.Metadata = watch.ExtractMetadata(cls.Platform, finalURL, result.HTML)
		}

		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// ClassifyBatch returns a handler for POST /api/v1/classify/batch.
//
// Batch classification is URL-only: nothing is fetched, so the marker
// confirmation step does not apply and IsProblemPage reflects the URL
// shape alone.
func ClassifyBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.BatchClassifyResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		results := make([]models.URLClassifyEntry, 0, len(req.URLs))
		for _, u := range req.URLs {
			results = append(results, models.URLClassifyEntry{
				URL:            u,
				Classification: platform.DetectURL(u),
			})
		}

		c.JSON(http.StatusOK, models.BatchClassifyResponse{
			Success: true,
			Results: results,
		})
	}
}

// markersConfirm accepts a fetched document when its classification does
// not depend on markers the page has yet to render: either the URL maps to
// no platform at all, or the platform's problem markers are present.
func markersConfirm(result *fetch.Result) bool {
	finalURL := result.FinalURL
	cls, _ := watch.Classify(finalURL, result.HTML)
	if cls.Platform == models.PlatformNone {
		return true
	}
	if !platform.MatchesProblemURL(cls.Platform, finalURL) {
		return true
	}
	return cls.IsProblemPage
}

// respondError maps a WatchError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	watchErr, ok := err.(*models.WatchError)
	if !ok {
		watchErr = models.NewWatchError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(watchErr), models.ClassifyResponse{
		Success: false,
		Error:   watchErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.WatchError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeWatchNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeWatchLimit:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeBrowserCrash:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}
