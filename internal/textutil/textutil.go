package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// HasLetters reports whether s contains at least one letter. Strings made
// only of digits, punctuation and control codes need no translation.
func HasLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// KeepPadding gives translated the same leading and trailing whitespace as
// original. Message windows rely on padding that models tend to drop.
func KeepPadding(original, translated string) string {
	core := strings.TrimSpace(original)
	if core == "" {
		return translated
	}
	start := strings.Index(original, core)
	lead := original[:start]
	trail := original[start+len(core):]
	return lead + strings.TrimSpace(translated) + trail
}
