package utils

import "unicode/utf8"

// charsPerToken is the rough ratio used for every budget in this module.
const charsPerToken = 4

// CountTokens estimates tokens as runes/4, with any non-empty text costing
// at least one token.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return max(utf8.RuneCountInString(text)/charsPerToken, 1)
}

// TruncateToTokenLimit cuts text to at most limit*4 runes. It never splits a
// rune.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	keep := limit * charsPerToken
	for i := range text {
		if keep == 0 {
			return text[:i]
		}
		keep--
	}
	return text
}
