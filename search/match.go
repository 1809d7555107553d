package search

import (
	"strings"
	"unicode"

	edlib "github.com/hbollon/go-edlib"
)

// DefaultThreshold is the largest edit ratio accepted as an approximate match.
const DefaultThreshold = 0.4

// Score bands. Lower is better.
const (
	exactScore      = 0.0
	substringBase   = 0.01
	substringSpan   = 0.09
	approximateBase = 0.1
	approximateSpan = 0.9
)

// matcher scores normalized values against one normalized query.
type matcher struct {
	query     string
	length    int
	threshold float64
	// slack is the longest a window may grow past the query length.
	slack int
}

func newMatcher(query string, threshold float64) *matcher {
	length := len([]rune(query))
	return &matcher{
		query:     query,
		length:    length,
		threshold: threshold,
		slack:     int(threshold * float64(length)),
	}
}

// score returns the match score for value and whether it matches at all.
//
// Equal values score 0. A value containing the query scores in (0, 0.1],
// earlier occurrences scoring better. Otherwise the best edit ratio is mapped
// onto (0.1, 1] and accepted when it is within the threshold. Candidates are
// the whole value, each of its words, and every window that starts at a word
// and is at least as long as the query, so "img_1243" finds "img_1234.jpg".
func (m *matcher) score(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	if value == m.query {
		return exactScore, true
	}
	if idx := strings.Index(value, m.query); idx >= 0 {
		offset := len([]rune(value[:idx]))
		return substringBase + substringSpan*float64(offset)/float64(len([]rune(value))), true
	}

	vr := []rune(value)
	best := m.ratio(value, len(vr))
	for _, w := range words(value) {
		best = min(best, m.ratio(w, len([]rune(w))))
	}
	for _, start := range wordStarts(vr) {
		for n := m.length; n <= m.length+m.slack && start+n <= len(vr); n++ {
			best = min(best, m.ratio(string(vr[start:start+n]), n))
		}
	}
	if best > m.threshold {
		return 0, false
	}
	return approximateBase + approximateSpan*best, true
}

// ratio is the optimal string alignment distance to the query relative to
// the longer of the two. n is the rune length of candidate.
func (m *matcher) ratio(candidate string, n int) float64 {
	longest := max(n, m.length)
	if longest == 0 {
		return 0
	}
	return float64(edlib.OSADamerauLevenshteinDistance(m.query, candidate)) / float64(longest)
}

// wordStarts returns the rune offsets at which a word begins in vr.
func wordStarts(vr []rune) []int {
	var starts []int
	for i, r := range vr {
		if !isWordRune(r) {
			continue
		}
		if i == 0 || !isWordRune(vr[i-1]) {
			starts = append(starts, i)
		}
	}
	return starts
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
