// Package filter decides whether a line of chat text is usable as
// training material for the language model.
package filter

import "regexp"

var (
	urlPattern = regexp.MustCompile(`https?://[^\s]+` +
		`|www\.[^\s]+` +
		`|(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,6}`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	// Anything outside word characters, whitespace and common punctuation.
	specialCharPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?'"«»():;-]`)
)

// Valid reports whether text qualifies as a training/display-worthy line.
// It is a pure predicate: no I/O, no side effects.
func Valid(text string) bool {
	if len([]rune(text)) < 3 {
		return false
	}
	if text[0] == '/' {
		return false
	}
	if urlPattern.MatchString(text) {
		return false
	}
	if mentionPattern.MatchString(text) {
		return false
	}
	if specialCharPattern.MatchString(text) {
		return false
	}
	return true
}
