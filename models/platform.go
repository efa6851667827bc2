package models

// PlatformID identifies which coding-practice platform a page belongs to.
// A page never changes platform after load.
type PlatformID string

const (
	PlatformLeetCode   PlatformID = "leetcode"
	PlatformCodeforces PlatformID = "codeforces"
	PlatformGfG        PlatformID = "gfg"
	PlatformNone       PlatformID = "none"
)

// Platforms lists the supported platforms in classification order.
// The URL classifier returns the first platform in this order whose
// pattern set matches.
var Platforms = []PlatformID{PlatformLeetCode, PlatformCodeforces, PlatformGfG}

// PageClassification is the result of platform/page-type detection.
// It is recomputed on demand and never cached across navigations.
type PageClassification struct {
	// Platform is the detected platform, or "none".
	Platform PlatformID `json:"platform"`

	// IsProblemPage is true when the page presents a single problem's
	// statement (URL match confirmed by DOM markers where available).
	IsProblemPage bool `json:"is_problem_page"`

	// IsSubmissionPage is true when a submission verdict may appear on
	// this page. It is always true when IsProblemPage is true, since
	// several platforms render verdicts inline on the problem page.
	IsSubmissionPage bool `json:"is_submission_page"`
}

// ProblemMetadata is the structured metadata extracted from a problem page.
// Missing fields are empty rather than errors; the record is produced once
// per page load and immutable afterwards.
type ProblemMetadata struct {
	// Title is the problem title, or empty when not found.
	Title string `json:"title"`

	// Difficulty is the normalized difficulty: "easy", "medium", "hard",
	// a Codeforces rating token like "*1500", or empty.
	Difficulty string `json:"difficulty"`

	// Tags is the deduplicated tag list in first-seen order.
	Tags []string `json:"tags"`

	// URL is the page address the metadata was extracted from.
	URL string `json:"url"`

	// Platform is the platform the extraction strategy belongs to.
	Platform PlatformID `json:"platform"`

	// Statement is the problem statement converted to Markdown.
	// Best-effort enrichment; empty when the statement container is absent.
	Statement string `json:"statement,omitempty"`

	// Excerpt is a short plain-text summary of the statement.
	Excerpt string `json:"excerpt,omitempty"`
}

// EmptyMetadata returns the degraded metadata shape used when extraction
// fails or no strategy exists: platform and URL are kept so the consumer
// still knows what page the record refers to.
func EmptyMetadata(platform PlatformID, pageURL string) *ProblemMetadata {
	return &ProblemMetadata{
		Tags:     []string{},
		URL:      pageURL,
		Platform: platform,
	}
}

// SolveEvent is emitted when an accepted verdict is detected on a watched
// page, at most once per solve cooldown window.
type SolveEvent struct {
	// Solved is always true; the event only exists for accepted verdicts.
	Solved bool `json:"solved"`

	// Timestamp is the detection time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`

	// TimeSpentSec is the wall-clock time from the first submission-page
	// observation to this verdict, rounded to the nearest whole second.
	TimeSpentSec int `json:"time_spent_sec"`

	// Attempts is the number of counted submission attempts, including
	// the accepted one. Always >= 1.
	Attempts int `json:"attempts"`
}
