package watch

import (
	"strings"
	"testing"

	"github.com/use-agent/solvewatch/models"
)

// The bootstrap script re-arms the observer on every document, so it must
// self-execute as a raw source (new-document scripts are not invoked as
// functions) and must stay guarded against running twice in one document.
func TestObserverBootstrap(t *testing.T) {
	src := observerBootstrap()

	if !strings.HasPrefix(src, "(") || !strings.HasSuffix(src, ")();") {
		t.Errorf("bootstrap must be self-executing, got %q...%q", src[:1], src[len(src)-4:])
	}
	if !strings.Contains(src, "if (window.__swObserver) { return; }") {
		t.Error("bootstrap lost the re-injection guard")
	}
	if !strings.Contains(src, mutationBinding) {
		t.Error("bootstrap does not post through the mutation binding")
	}
}

func TestParseFragments(t *testing.T) {
	nodes := parseFragments([]string{
		`<span data-e2e-locator="submission-result">Accepted</span>`,
		`<div><p>nested</p></div>`,
	})
	if len(nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(nodes))
	}
	if nodes[0].Data != "span" || nodes[1].Data != "div" {
		t.Errorf("unexpected node tags: %q, %q", nodes[0].Data, nodes[1].Data)
	}
}

func TestParseFragments_Empty(t *testing.T) {
	if nodes := parseFragments(nil); len(nodes) != 0 {
		t.Errorf("no fragments should yield no nodes, got %d", len(nodes))
	}
	if nodes := parseFragments([]string{""}); len(nodes) != 0 {
		t.Errorf("an empty fragment should yield no nodes, got %d", len(nodes))
	}
}

func TestClassify(t *testing.T) {
	rawHTML := `<html><body>
		<div data-track-load="description_content">Given an array...</div>
	</body></html>`

	cls, doc := Classify("https://leetcode.com/problems/two-sum/", rawHTML)
	if doc == nil {
		t.Fatal("document should parse")
	}
	if cls.Platform != models.PlatformLeetCode || !cls.IsProblemPage {
		t.Errorf("classification = %+v", cls)
	}

	cls, _ = Classify("https://example.com/", rawHTML)
	if cls.Platform != models.PlatformNone {
		t.Errorf("unknown site should classify as none, got %+v", cls)
	}
}

func TestExtractMetadata(t *testing.T) {
	rawHTML := `<html><body>
		<div class="text-title-large">1. Two Sum</div>
		<div data-track-load="description_content"><p>Given an array of integers...</p></div>
	</body></html>`

	meta := ExtractMetadata(models.PlatformLeetCode, "https://leetcode.com/problems/two-sum/", rawHTML)
	if meta == nil {
		t.Fatal("metadata is never nil")
	}
	if meta.Title != "Two Sum" {
		t.Errorf("title = %q, want Two Sum", meta.Title)
	}

	meta = ExtractMetadata(models.PlatformLeetCode, "https://leetcode.com/problems/two-sum/", "")
	if meta == nil || meta.Platform != models.PlatformLeetCode {
		t.Errorf("unparseable HTML should degrade to empty metadata, got %+v", meta)
	}
}
