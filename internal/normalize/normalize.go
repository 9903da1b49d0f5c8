// Package normalize canonicalizes word tokens into dictionary lookup keys.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostrophes = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"ʼ", "'",
	"`", "'",
)

// Word returns the lookup key for a raw token. The key is lowercase, holds
// letters only, and is empty when the token has no alphabetic content.
func Word(token string) string {
	token = strings.ToLower(fold(apostrophes.Replace(token)))
	token = strings.TrimFunc(token, isEdgePunct)
	if v, ok := contractions[token]; ok {
		return v
	}
	if v, ok := acronyms[token]; ok {
		return v
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, token)
}

// Words splits a line on whitespace and returns the non-empty keys in order.
func Words(line string) []string {
	fields := strings.Fields(line)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if key := Word(field); key != "" {
			out = append(out, key)
		}
	}
	return out
}

// LastWord returns the key of the last token in line that has alphabetic
// content, or "" when there is none.
func LastWord(line string) string {
	fields := strings.Fields(line)
	for i := len(fields) - 1; i >= 0; i-- {
		if key := Word(fields[i]); key != "" {
			return key
		}
	}
	return ""
}

func fold(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isEdgePunct(r rune) bool {
	return r != '\'' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
