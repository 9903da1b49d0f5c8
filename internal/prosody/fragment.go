package prosody

import (
	"strings"

	"github.com/verte-zerg/lybrarian/internal/model"
)

// SplitLines splits text on line breaks, trims each line and drops blanks.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Classify maps a line count to a fragment type.
func Classify(n int) model.FragmentType {
	switch {
	case n == 1:
		return model.SingleLine
	case n == 2:
		return model.Couplet
	case n == 4:
		return model.Quatrain
	case n > 8:
		return model.Stanza
	default:
		return model.Verse
	}
}
