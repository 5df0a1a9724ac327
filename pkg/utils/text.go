package utils

import (
	"fmt"
	"unicode/utf8"
)

// Truncate returns s truncated to maxLen runes, with "..." appended if
// truncated. Cutting at a rune boundary keeps multibyte text valid UTF-8.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	end := 0
	for i := 0; i < maxLen; i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end] + "..."
}

// FormatFileSize renders a byte count as a human-readable size ("1.5 MB").
func FormatFileSize(size int64) string {
	if size == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}
