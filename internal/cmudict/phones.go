package cmudict

// StressDigit returns the stress digit carried by a vowel phoneme.
func StressDigit(phone string) (byte, bool) {
	if phone == "" {
		return 0, false
	}
	last := phone[len(phone)-1]
	if last < '0' || last > '2' {
		return 0, false
	}
	return last, true
}

// IsVowel reports whether the phoneme carries a stress digit.
func IsVowel(phone string) bool {
	_, ok := StressDigit(phone)
	return ok
}

// Stresses returns the stress digits of the pronunciation's vowels in order.
func (p Pronunciation) Stresses() []byte {
	out := make([]byte, 0, len(p))
	for _, phone := range p {
		if d, ok := StressDigit(phone); ok {
			out = append(out, d)
		}
	}
	return out
}

// RhymingPart returns the phonemes from the last primary or secondary
// stressed vowel through the end. Pronunciations without such a vowel are
// returned whole.
func (p Pronunciation) RhymingPart() Pronunciation {
	for i := len(p) - 1; i >= 0; i-- {
		if d, ok := StressDigit(p[i]); ok && (d == '1' || d == '2') {
			return p[i:]
		}
	}
	return p
}
