package utils

import "unicode/utf8"

// TruncateRunes cuts s to at most max runes. A non-positive max yields "".
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
