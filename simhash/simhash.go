// Package simhash computes 64-bit similarity fingerprints of page text and
// DOM structure. The watcher uses structural fingerprints to tell a SPA
// route change (the framework replaces the page wholesale) apart from
// ordinary in-page mutations like a verdict panel rendering.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// routeChangeThreshold is the minimum Hamming distance between two
// structural fingerprints for the pages to count as different documents.
// Verdict-panel churn moves a handful of bits; a route swap moves dozens.
const routeChangeThreshold = 12

// Fingerprint computes a 64-bit SimHash of the given text using FNV-64a
// on word-level tokens with bit-vector accumulation. Empty or
// whitespace-only input yields 0.
func Fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var vector [64]int
	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// FingerprintDOM computes a SimHash of the DOM structure: tag names in
// document order, shingled in threes. Text content and attributes are
// ignored, so two renders of the same page that differ only in data
// produce the same fingerprint.
func FingerprintDOM(htmlStr string) uint64 {
	tags := extractTags(htmlStr)
	if len(tags) == 0 {
		return 0
	}

	shingles := makeShingles(tags, 3)
	if len(shingles) == 0 {
		// Too few tags for shingles; hash the tag sequence directly.
		return Fingerprint(strings.Join(tags, " "))
	}
	return Fingerprint(strings.Join(shingles, " "))
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// RouteChanged reports whether two structural fingerprints are far enough
// apart to indicate the page was replaced rather than mutated in place.
// A zero previous fingerprint (nothing recorded yet) never reports a change.
func RouteChanged(prev, next uint64) bool {
	if prev == 0 {
		return false
	}
	return Distance(prev, next) > routeChangeThreshold
}

// extractTags walks HTML with the tokenizer and collects open tag names in order.
func extractTags(htmlStr string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	var tags []string

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			tags = append(tags, string(tn))
		}
	}
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
