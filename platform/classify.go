package platform

import (
	"regexp"

	"github.com/use-agent/solvewatch/models"
)

// MatchURL returns the first platform (in table order) whose URL pattern
// set matches the given address, or PlatformNone when nothing matches.
// Pure function, total: a malformed or empty address simply matches nothing.
//
// Dedicated submission addresses (Codeforces status/my pages) also identify
// their platform, so the detector can recognize a results page whose URL
// is not a problem URL.
func MatchURL(rawURL string) models.PlatformID {
	for _, p := range profiles {
		if matchAny(p.ProblemURLs, rawURL) || matchAny(p.SubmissionURLs, rawURL) {
			return p.ID
		}
	}
	return models.PlatformNone
}

// MatchesProblemURL reports whether the address matches the platform's
// problem-page pattern set.
func MatchesProblemURL(id models.PlatformID, rawURL string) bool {
	p := Lookup(id)
	return p != nil && matchAny(p.ProblemURLs, rawURL)
}

// MatchesSubmissionURL reports whether the address matches the platform's
// dedicated submission/results pattern set.
func MatchesSubmissionURL(id models.PlatformID, rawURL string) bool {
	p := Lookup(id)
	return p != nil && matchAny(p.SubmissionURLs, rawURL)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
