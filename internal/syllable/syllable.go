// Package syllable estimates syllable counts for words and lines.
package syllable

import (
	"regexp"
	"strings"

	"github.com/verte-zerg/lybrarian/internal/normalize"
)

const vowels = "aeiouy"

var (
	vowelGroup = regexp.MustCompile(`[aeiouy]+`)

	// Vowel runs that are usually pronounced as two syllables.
	splitVowels = []*regexp.Regexp{
		regexp.MustCompile(`[^cst]i[ao]`),
		regexp.MustCompile(`^i[ao]`),
		regexp.MustCompile(`[^gq]ua`),
		regexp.MustCompile(`uo`),
		regexp.MustCompile(`iu`),
		regexp.MustCompile(`ii`),
		regexp.MustCompile(`[^aeiou]ism$`),
		regexp.MustCompile(`^mc`),
	}

	// A y between vowels opens a new syllable (player, royal), except in eye.
	glideY = regexp.MustCompile(`[aeiou]y[aeiou]`)

	// Spellings whose final vowel group is silent.
	silentEndings = []*regexp.Regexp{
		regexp.MustCompile(`[^aeiouy]e$`),
		regexp.MustCompile(`[^aeioutd]ed$`),
		regexp.MustCompile(`[^aeiouyszxgch]es$`),
	}

	// Consonant + le endings keep their syllable.
	syllabicLe = regexp.MustCompile(`[^aeiouy]les?$`)
)

// Estimate returns a heuristic syllable count for a normalized word. It
// reports false when the word holds characters the heuristic does not model
// or no vowel group at all.
func Estimate(word string) (int, bool) {
	if word == "" {
		return 0, false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return 0, false
		}
	}
	count := len(vowelGroup.FindAllStringIndex(word, -1))
	if count == 0 {
		return 0, false
	}
	for _, re := range splitVowels {
		if re.MatchString(word) {
			count++
		}
	}
	if !strings.HasPrefix(word, "eye") && glideY.MatchString(word) {
		count++
	}
	if count > 1 && hasSilentEnding(word) {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count, true
}

func hasSilentEnding(word string) bool {
	if syllabicLe.MatchString(word) {
		return false
	}
	for _, re := range silentEndings {
		if re.MatchString(word) {
			return true
		}
	}
	return false
}

// VowelGroups counts contiguous runs of a, e, i, o, u and y.
func VowelGroups(s string) int {
	count := 0
	prev := false
	for _, r := range strings.ToLower(s) {
		is := strings.ContainsRune(vowels, r)
		if is && !prev {
			count++
		}
		prev = is
	}
	return count
}

// Word returns the syllable count for a normalized word, falling back to
// vowel groups when the heuristic fails. The result is at least 1.
func Word(word string) int {
	n, ok := Estimate(word)
	if !ok {
		n = VowelGroups(word)
	}
	if n < 1 {
		return 1
	}
	return n
}

// Line sums the syllables of every word in the line. Lines without words
// count as one syllable.
func Line(text string) int {
	total := 0
	for _, word := range normalize.Words(text) {
		total += Word(word)
	}
	if total < 1 {
		return 1
	}
	return total
}
