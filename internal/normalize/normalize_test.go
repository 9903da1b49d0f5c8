package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWord(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"don't", "dont"},
		{"Don't,", "dont"},
		{"DON’T", "dont"},
		{"AI", "ayeye"},
		{"ai.", "ayeye"},
		{"'til", "til"},
		{"Hello!", "hello"},
		{"rock-n-roll", "rocknroll"},
		{"café", "cafe"},
		{"naïve", "naive"},
		{"o'clock", "oclock"},
		{"1999", ""},
		{"--", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, Word(tt.in), "Word(%q)", tt.in)
	}
}

func TestWordNeverKeepsApostrophes(t *testing.T) {
	for _, token := range []string{"don't", "rock'n'roll", "'em", "y'all", "it’s", "dancin'"} {
		if got := Word(token); strings.ContainsAny(got, "'’") {
			t.Fatalf("Word(%q) = %q still contains an apostrophe", token, got)
		}
	}
}

func TestWordsSkipsEmptyKeys(t *testing.T) {
	got := Words("  I can't -- stop   the 1999 night ")
	assert.Equal(t, []string{"i", "cant", "stop", "the", "night"}, got)
}

func TestLastWord(t *testing.T) {
	assert.Equal(t, "night", LastWord("into the night --"))
	assert.Equal(t, "dont", LastWord("please don't"))
	assert.Equal(t, "", LastWord("... ?!"))
	assert.Equal(t, "", LastWord(""))
}
