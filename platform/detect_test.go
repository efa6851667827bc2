package platform

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/use-agent/solvewatch/models"
)

func parseDoc(t *testing.T, rawHTML string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		t.Fatalf("parse test document: %v", err)
	}
	return doc
}

func TestHasMarker(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div data-track-load="description_content">Given an array of integers...</div>
		<div class="text-title-large">1. Two Sum</div>
	</body></html>`)

	tests := []struct {
		name      string
		selectors []string
		want      bool
	}{
		{"attribute selector present", []string{`div[data-track-load="description_content"]`}, true},
		{"class selector present", []string{`.text-title-large`}, true},
		{"absent selector", []string{`.problem-statement`}, false},
		{"any-of semantics", []string{`.problem-statement`, `.text-title-large`}, true},
		{"empty set trusts the URL", nil, true},
		{"malformed selector skipped", []string{`[[[`, `.text-title-large`}, true},
		{"malformed selector alone", []string{`[[[`}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasMarker(doc, tt.selectors)
			if got != tt.want {
				t.Errorf("HasMarker(%v) = %t, want %t", tt.selectors, got, tt.want)
			}
		})
	}
}

func TestHasMarker_NilDoc(t *testing.T) {
	if HasMarker(nil, []string{`.anything`}) {
		t.Error("nil document cannot contain markers")
	}
	if !HasMarker(nil, nil) {
		t.Error("empty selector set is true even without a document")
	}
}

func TestDetect_LeetCodeProblemPage(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div data-track-load="description_content">Given an array of integers nums...</div>
	</body></html>`)

	cls := Detect("https://leetcode.com/problems/two-sum/", doc)
	if cls.Platform != models.PlatformLeetCode {
		t.Fatalf("platform = %q, want leetcode", cls.Platform)
	}
	if !cls.IsProblemPage {
		t.Error("marker present, should be a problem page")
	}
	if !cls.IsSubmissionPage {
		t.Error("problem pages carry inline submit panels, should be a submission context")
	}
}

func TestDetect_LeetCodeShellPage(t *testing.T) {
	// An HTTP fetch of a client-rendered page: the URL matches but the
	// markers only appear after JavaScript runs.
	doc := parseDoc(t, `<html><body><div id="app"></div></body></html>`)

	cls := Detect("https://leetcode.com/problems/two-sum/", doc)
	if cls.Platform != models.PlatformLeetCode {
		t.Fatalf("platform = %q, want leetcode", cls.Platform)
	}
	if cls.IsProblemPage {
		t.Error("no markers, must not classify as a problem page")
	}
	if cls.IsSubmissionPage {
		t.Error("neither problem page nor submission URL")
	}
}

func TestDetect_CodeforcesStatusPage(t *testing.T) {
	doc := parseDoc(t, `<html><body><table class="status-frame-datatable"></table></body></html>`)

	cls := Detect("https://codeforces.com/contest/1234/my", doc)
	if cls.Platform != models.PlatformCodeforces {
		t.Fatalf("platform = %q, want codeforces", cls.Platform)
	}
	if cls.IsProblemPage {
		t.Error("a status page is not a problem page")
	}
	if !cls.IsSubmissionPage {
		t.Error("a status page is a submission context")
	}
}

func TestDetect_GfGTrustsURL(t *testing.T) {
	// GfG has no markers configured; the URL match alone decides.
	doc := parseDoc(t, `<html><body><div>anything</div></body></html>`)

	cls := Detect("https://www.geeksforgeeks.org/problems/reverse-a-linked-list/1", doc)
	if cls.Platform != models.PlatformGfG {
		t.Fatalf("platform = %q, want gfg", cls.Platform)
	}
	if !cls.IsProblemPage {
		t.Error("gfg problem URL is trusted without markers")
	}
}

func TestDetect_UnknownSite(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="problem-statement">fake</div></body></html>`)

	cls := Detect("https://example.com/problems/1/A", doc)
	if cls.Platform != models.PlatformNone {
		t.Errorf("platform = %q, want none", cls.Platform)
	}
	if cls.IsProblemPage || cls.IsSubmissionPage {
		t.Error("unknown sites never classify, markers or not")
	}
}

func TestDetectURL(t *testing.T) {
	cls := DetectURL("https://leetcode.com/problems/two-sum/")
	if cls.Platform != models.PlatformLeetCode || !cls.IsProblemPage {
		t.Errorf("URL-only detection takes a problem-URL match at face value, got %+v", cls)
	}

	cls = DetectURL("https://codeforces.com/problemset/status")
	if cls.Platform != models.PlatformCodeforces || cls.IsProblemPage || !cls.IsSubmissionPage {
		t.Errorf("status URL should give submission-only classification, got %+v", cls)
	}

	cls = DetectURL("https://example.com/")
	if cls.Platform != models.PlatformNone {
		t.Errorf("unknown URL should give none, got %+v", cls)
	}
}
