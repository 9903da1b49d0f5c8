// Package stress derives binary stress patterns for lines of text.
//
// Only primary stress counts as stressed: CMUdict digit 1 becomes "1" while
// 0 and 2 become "0". Words missing from the dictionary are marked with the
// first syllable stressed and the rest unstressed, a deliberate simplification
// that does not model iambic or trochaic tendencies.
package stress

import (
	"strings"

	"github.com/verte-zerg/lybrarian/internal/cmudict"
	"github.com/verte-zerg/lybrarian/internal/normalize"
	"github.com/verte-zerg/lybrarian/internal/syllable"
)

// Degenerate is the pattern for lines without alphabetic words.
const Degenerate = "1"

// Dictionary looks up the primary pronunciation of a normalized word.
type Dictionary interface {
	Primary(word string) (cmudict.Pronunciation, bool)
}

// Line returns the stress pattern of a line. d may be nil, in which case
// every word uses the syllable heuristic.
func Line(d Dictionary, text string) string {
	var b strings.Builder
	for _, word := range normalize.Words(text) {
		b.WriteString(Word(d, word))
	}
	if b.Len() == 0 {
		return Degenerate
	}
	return b.String()
}

// Word returns the stress markers of a single normalized word.
func Word(d Dictionary, word string) string {
	if d != nil {
		if p, ok := d.Primary(word); ok {
			return FromPronunciation(p)
		}
	}
	return Heuristic(syllable.Word(word))
}

// FromPronunciation maps each vowel's stress digit to "1" or "0".
func FromPronunciation(p cmudict.Pronunciation) string {
	digits := p.Stresses()
	out := make([]byte, len(digits))
	for i, d := range digits {
		if d == '1' {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

// Heuristic marks the first of n syllables stressed.
func Heuristic(n int) string {
	if n < 1 {
		n = 1
	}
	return "1" + strings.Repeat("0", n-1)
}
