package rhyme

import (
	"strings"

	"github.com/verte-zerg/lybrarian/internal/cmudict"
)

type substitution struct {
	name  string
	apply func(phones []string, i int) (string, bool)
}

// britishRules run in order; each phoneme is rewritten by the first rule
// that matches it and the result is never fed back through the table.
var britishRules = []substitution{
	{name: "trap-bath", apply: remapVowel("AE", "AA")},
	{name: "lot-cloth", apply: remapVowel("AA", "AO")},
	{name: "nurse", apply: remapVowel("ER", "AH")},
	{name: "non-prevocalic-r", apply: dropFinalR},
}

func remapVowel(from, to string) func([]string, int) (string, bool) {
	return func(phones []string, i int) (string, bool) {
		base, digit, ok := splitVowel(phones[i])
		if !ok || base != from {
			return "", false
		}
		return to + digit, true
	}
}

func dropFinalR(phones []string, i int) (string, bool) {
	if phones[i] != "R" {
		return "", false
	}
	if i+1 < len(phones) && cmudict.IsVowel(phones[i+1]) {
		return "", false
	}
	return "", true
}

func splitVowel(phone string) (string, string, bool) {
	if !cmudict.IsVowel(phone) {
		return "", "", false
	}
	return phone[:len(phone)-1], phone[len(phone)-1:], true
}

// BritishFromAmerican derives a British rhyme key from an American one by
// applying a fixed table of phoneme substitutions: TRAP-BATH lowering,
// LOT-CLOTH rounding and loss of non-prevocalic R. It is a pure function of
// its input.
func BritishFromAmerican(us string) string {
	phones := strings.Fields(us)
	out := make([]string, 0, len(phones))
	for i := range phones {
		replaced := phones[i]
		for _, rule := range britishRules {
			if v, ok := rule.apply(phones, i); ok {
				replaced = v
				break
			}
		}
		if replaced != "" {
			out = append(out, replaced)
		}
	}
	return strings.Join(out, " ")
}
