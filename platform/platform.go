// Package platform knows how to recognize coding-practice platforms from
// page addresses and DOM markers, and carries each platform's selector and
// verdict vocabulary used by the rest of the pipeline.
package platform

import (
	"regexp"

	"github.com/use-agent/solvewatch/models"
)

// Profile describes everything the pipeline needs to know about one
// platform: how its URLs look, which DOM markers confirm a problem page,
// and which text/markup signals a submission verdict.
type Profile struct {
	ID models.PlatformID

	// ProblemURLs match addresses of problem-statement pages.
	ProblemURLs []*regexp.Regexp

	// SubmissionURLs match dedicated submission/results pages. Only
	// Codeforces has these; the other platforms show verdicts inline on
	// the problem page itself.
	SubmissionURLs []*regexp.Regexp

	// ProblemMarkers are CSS selectors whose presence confirms a problem
	// page. An empty set means the URL alone is trusted.
	ProblemMarkers []string

	// AttemptVocab are verdict strings whose appearance in newly added
	// DOM nodes counts as a submission attempt (any outcome).
	AttemptVocab []string

	// SuccessVocab is the stricter subset indicating full acceptance.
	SuccessVocab []string

	// VerdictClassMarkers are class-name substrings that mark
	// verdict-styled elements (attempt signal even without vocab text).
	VerdictClassMarkers []string

	// ResultContainers are CSS selectors for dedicated result elements.
	// When any of them is present in a batch, the success classifier
	// only trusts text inside them, to avoid false positives from
	// unrelated page chrome.
	ResultContainers []string

	// ExcludePatterns remove text segments from verdict matching.
	// LeetCode renders its acceptance stats inline as "<n> Accepted / <n>",
	// which contains the word "Accepted" but is not a verdict.
	ExcludePatterns []*regexp.Regexp
}

var acceptedRate = regexp.MustCompile(`\d+(\.\d+)?[KM]?\s*Accepted\s*/\s*\d*`)

// profiles is the platform table in classification order.
var profiles = []*Profile{
	{
		ID: models.PlatformLeetCode,
		ProblemURLs: []*regexp.Regexp{
			regexp.MustCompile(`^https?://(www\.)?leetcode\.(com|cn)/problems/[\w-]+`),
		},
		ProblemMarkers: []string{
			`div[data-track-load="description_content"]`,
			`.text-title-large`,
			`div[data-cy="question-title"]`,
		},
		AttemptVocab: []string{
			"Accepted", "Wrong Answer", "Time Limit Exceeded",
			"Memory Limit Exceeded", "Output Limit Exceeded",
			"Runtime Error", "Compile Error", "Compilation Error",
		},
		SuccessVocab: []string{"Accepted", "Success"},
		ResultContainers: []string{
			`span[data-e2e-locator="submission-result"]`,
			`div[data-e2e-locator="console-result"]`,
		},
		ExcludePatterns: []*regexp.Regexp{acceptedRate},
	},
	{
		ID: models.PlatformCodeforces,
		ProblemURLs: []*regexp.Regexp{
			regexp.MustCompile(`^https?://(www\.)?codeforces\.com/problemset/problem/\d+/\w+`),
			regexp.MustCompile(`^https?://(www\.)?codeforces\.com/(contest|gym)/\d+/problem/\w+`),
		},
		SubmissionURLs: []*regexp.Regexp{
			regexp.MustCompile(`^https?://(www\.)?codeforces\.com/(contest|gym)/\d+/(my|status)`),
			regexp.MustCompile(`^https?://(www\.)?codeforces\.com/problemset/status`),
			regexp.MustCompile(`^https?://(www\.)?codeforces\.com/submissions/`),
		},
		ProblemMarkers: []string{`.problem-statement`},
		AttemptVocab: []string{
			"Accepted", "Wrong answer", "Time limit exceeded",
			"Memory limit exceeded", "Runtime error", "Compilation error",
			"Idleness limit exceeded", "Hacked", "Skipped", "Rejected",
		},
		SuccessVocab:        []string{"Accepted", "OK"},
		VerdictClassMarkers: []string{"verdict-accepted", "verdict-rejected", "verdict-failed", "verdict-waiting"},
		ResultContainers:    []string{`.verdict-accepted`, `span.verdict`},
	},
	{
		ID: models.PlatformGfG,
		ProblemURLs: []*regexp.Regexp{
			regexp.MustCompile(`^https?://(www\.)?(practice\.)?geeksforgeeks\.org/problems/[\w-]+`),
		},
		// GfG markup churns too often for a reliable marker; the URL
		// pattern is specific enough on its own.
		ProblemMarkers: nil,
		AttemptVocab: []string{
			"Problem Solved Successfully", "Correct Answer", "All test cases passed",
			"Wrong Answer", "Time Limit Exceeded", "Compilation Error", "Runtime Error",
		},
		SuccessVocab: []string{
			"Problem Solved Successfully", "Correct Answer", "All test cases passed",
		},
	},
}

// Lookup returns the profile for a platform, or nil for "none" and
// unknown identifiers.
func Lookup(id models.PlatformID) *Profile {
	for _, p := range profiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}
