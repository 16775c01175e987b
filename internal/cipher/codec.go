package cipher

import "strings"

// Encrypt rotates each ASCII Latin letter in text by shift positions,
// preserving case. Every other code point (digits, punctuation, whitespace,
// non-Latin scripts) passes through unchanged, so the output always has the
// same rune count as the input. The shift is normalized once up front; any
// integer is accepted.
func Encrypt(text string, shift int) string {
	s := Normalize(shift)
	if s == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune('A' + (r-'A'+rune(s))%AlphabetSize)
		case r >= 'a' && r <= 'z':
			b.WriteRune('a' + (r-'a'+rune(s))%AlphabetSize)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Decrypt reverses Encrypt for the same shift. It is defined as encryption
// with the negated shift, so Decrypt(Encrypt(t, k), k) == t holds for all
// text t and all integers k.
func Decrypt(text string, shift int) string {
	return Encrypt(text, -shift)
}
