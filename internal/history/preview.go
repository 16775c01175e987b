package history

import "unicode/utf8"

// PreviewChars is the rune budget for list previews.
const PreviewChars = 80

// CountChars returns the character count as runes (not bytes).
// This correctly handles multi-byte UTF-8 characters.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// Preview truncates text to at most limit runes, appending an ellipsis when
// anything was cut. Safe on multi-byte input.
func Preview(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "…"
}
