package verdict

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/use-agent/solvewatch/models"
)

// fragment parses an HTML fragment into its top-level nodes, the same
// shape a mutation batch delivers.
func fragment(t *testing.T, raw string) []*html.Node {
	t.Helper()
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), body)
	if err != nil {
		t.Fatalf("parse fragment %q: %v", raw, err)
	}
	return nodes
}

func detector(t *testing.T, id models.PlatformID) Detector {
	t.Helper()
	d, ok := For(id)
	if !ok {
		t.Fatalf("no detector for %q", id)
	}
	return d
}

func TestFor_UnknownPlatform(t *testing.T) {
	if _, ok := For(models.PlatformNone); ok {
		t.Error("the none platform has no detector")
	}
	if _, ok := For("unknown"); ok {
		t.Error("unknown platforms have no detector")
	}
}

func TestLeetCode_AcceptedVerdict(t *testing.T) {
	d := detector(t, models.PlatformLeetCode)
	nodes := fragment(t, `<span data-e2e-locator="submission-result">Accepted</span>`)

	if !d.IsAttempt(nodes) {
		t.Error("accepted verdict is an attempt")
	}
	if !d.IsSuccess(nodes) {
		t.Error("accepted verdict is a success")
	}
}

func TestLeetCode_WrongAnswer(t *testing.T) {
	d := detector(t, models.PlatformLeetCode)
	nodes := fragment(t, `<span data-e2e-locator="submission-result">Wrong Answer</span>`)

	if !d.IsAttempt(nodes) {
		t.Error("wrong answer is an attempt")
	}
	if d.IsSuccess(nodes) {
		t.Error("wrong answer is not a success")
	}
}

func TestLeetCode_AcceptedRateNotAVerdict(t *testing.T) {
	// The problem page renders acceptance stats that contain the word
	// "Accepted" without any submission having happened.
	d := detector(t, models.PlatformLeetCode)
	nodes := fragment(t, `<div class="stats"><span>37.2K Accepted / 58.1K Submissions</span></div>`)

	if d.IsAttempt(nodes) {
		t.Error("acceptance-rate stats must not count as an attempt")
	}
	if d.IsSuccess(nodes) {
		t.Error("acceptance-rate stats must not count as a success")
	}
}

func TestLeetCode_ContainerPreferred(t *testing.T) {
	// When a result container is in the batch, text outside it does not
	// count: the container says Wrong Answer, a sidebar says Accepted.
	d := detector(t, models.PlatformLeetCode)
	nodes := fragment(t, `<div>
		<span data-e2e-locator="submission-result">Wrong Answer</span>
		<div class="sidebar">Recently Accepted solutions</div>
	</div>`)

	if d.IsSuccess(nodes) {
		t.Error("text outside the result container must not drive success")
	}
	if !d.IsAttempt(nodes) {
		t.Error("the wrong-answer verdict is still an attempt")
	}
}

func TestLeetCode_LooseTextWithoutContainer(t *testing.T) {
	// No container in the batch: fall back to loose text matching.
	d := detector(t, models.PlatformLeetCode)
	nodes := fragment(t, `<div class="result-panel">Accepted</div>`)

	if !d.IsSuccess(nodes) {
		t.Error("without containers, plain accepted text is a success")
	}
}

func TestLeetCode_SplitTextNodes(t *testing.T) {
	// Vocabulary matching is per text node: "Accepted" split across two
	// elements never concatenates into a false match, but an intact node
	// inside a wrapper still matches.
	d := detector(t, models.PlatformLeetCode)

	split := fragment(t, `<div><span>Acc</span><span>epted</span></div>`)
	if d.IsAttempt(split) {
		t.Error("verdict text split across nodes must not match")
	}

	nested := fragment(t, `<div><div><span>Accepted</span></div></div>`)
	if !d.IsAttempt(nested) {
		t.Error("intact verdict text in a nested node should match")
	}
}

func TestCodeforces_ClassMarkers(t *testing.T) {
	d := detector(t, models.PlatformCodeforces)

	// A verdict-styled cell counts as an attempt even when the text is
	// still rendering.
	waiting := fragment(t, `<td class="status-cell"><span class="verdict-waiting"></span></td>`)
	if !d.IsAttempt(waiting) {
		t.Error("verdict-styled element is an attempt signal")
	}
	if d.IsSuccess(waiting) {
		t.Error("an empty waiting cell is not a success")
	}

	accepted := fragment(t, `<span class="verdict-accepted">Accepted</span>`)
	if !d.IsAttempt(accepted) {
		t.Error("accepted cell is an attempt")
	}
	if !d.IsSuccess(accepted) {
		t.Error("accepted cell is a success")
	}
}

func TestCodeforces_OKVerdict(t *testing.T) {
	d := detector(t, models.PlatformCodeforces)
	nodes := fragment(t, `<span class="verdict-accepted">OK</span>`)

	if !d.IsSuccess(nodes) {
		t.Error("OK inside a verdict container is a success")
	}
}

func TestGfG_SolvedBanner(t *testing.T) {
	d := detector(t, models.PlatformGfG)

	solved := fragment(t, `<div class="modal"><h2>Problem Solved Successfully</h2></div>`)
	if !d.IsAttempt(solved) || !d.IsSuccess(solved) {
		t.Error("solved banner is both an attempt and a success")
	}

	wrong := fragment(t, `<div class="modal"><h2>Wrong Answer</h2><p>2 / 10 test cases passed</p></div>`)
	if !d.IsAttempt(wrong) {
		t.Error("wrong answer banner is an attempt")
	}
	if d.IsSuccess(wrong) {
		t.Error("wrong answer banner is not a success")
	}
}

func TestDetector_UnrelatedMutations(t *testing.T) {
	d := detector(t, models.PlatformLeetCode)
	nodes := fragment(t, `<div class="toast">Settings saved</div><li>Array</li>`)

	if d.IsAttempt(nodes) || d.IsSuccess(nodes) {
		t.Error("unrelated page chrome must not register as a verdict")
	}
}

func TestDetector_NilAndEmpty(t *testing.T) {
	d := detector(t, models.PlatformLeetCode)

	if d.IsAttempt(nil) || d.IsSuccess(nil) {
		t.Error("empty batch has no verdicts")
	}
	if d.IsAttempt([]*html.Node{nil, nil}) || d.IsSuccess([]*html.Node{nil, nil}) {
		t.Error("nil nodes are tolerated and never match")
	}
}
