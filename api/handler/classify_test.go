package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/solvewatch/fetch"
	"github.com/use-agent/solvewatch/models"
)

func batchRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/classify/batch", ClassifyBatch())
	return r
}

func TestClassifyBatch(t *testing.T) {
	r := batchRouter()

	body := `{"urls": [
		"https://leetcode.com/problems/two-sum/",
		"https://codeforces.com/contest/1234/my",
		"https://example.com/"
	]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/classify/batch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp models.BatchClassifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !resp.Success || len(resp.Results) != 3 {
		t.Fatalf("response = %+v", resp)
	}

	if got := resp.Results[0].Classification; got.Platform != models.PlatformLeetCode || !got.IsProblemPage {
		t.Errorf("leetcode entry = %+v", got)
	}
	if got := resp.Results[1].Classification; got.Platform != models.PlatformCodeforces || !got.IsSubmissionPage || got.IsProblemPage {
		t.Errorf("codeforces status entry = %+v", got)
	}
	if got := resp.Results[2].Classification; got.Platform != models.PlatformNone {
		t.Errorf("unknown entry = %+v", got)
	}
}

func TestClassifyBatch_EmptyList(t *testing.T) {
	r := batchRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/classify/batch", strings.NewReader(`{"urls": []}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("empty url list should 400, got %d", w.Code)
	}
}

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeRateLimited, http.StatusTooManyRequests},
		{models.ErrCodeUnauthorized, http.StatusUnauthorized},
		{models.ErrCodeWatchNotFound, http.StatusNotFound},
		{models.ErrCodeWatchLimit, http.StatusServiceUnavailable},
		{models.ErrCodeBrowserCrash, http.StatusInternalServerError},
		{models.ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		e := models.NewWatchError(tt.code, "msg", nil)
		if got := mapErrorToStatus(e); got != tt.want {
			t.Errorf("mapErrorToStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestMarkersConfirm(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		html   string
		accept bool
	}{
		{
			"unknown site always valid",
			"https://example.com/",
			`<html><body></body></html>`,
			true,
		},
		{
			"problem URL with markers",
			"https://leetcode.com/problems/two-sum/",
			`<html><body><div data-track-load="description_content">x</div></body></html>`,
			true,
		},
		{
			"problem URL without markers is a shell",
			"https://leetcode.com/problems/two-sum/",
			`<html><body><div id="app"></div></body></html>`,
			false,
		},
		{
			"submission URL needs no markers",
			"https://codeforces.com/contest/1234/my",
			`<html><body><table></table></body></html>`,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &fetch.Result{HTML: tt.html, FinalURL: tt.url}
			if got := markersConfirm(result); got != tt.accept {
				t.Errorf("markersConfirm = %t, want %t", got, tt.accept)
			}
		})
	}
}
