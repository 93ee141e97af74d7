// Package markov implements the text-generation core: a first-order
// transition table plus a second-order n-gram chain, rebuilt in full from the
// corpus and served through an atomically swapped snapshot.
package markov

import (
	"regexp"
	"strings"
)

var (
	stripPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?]`)
	tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+|[.,!?]`)
)

// Tokenize lower-cases the text and splits it into word runs and single
// punctuation marks. Punctuation is a first-class token so it can act both as
// a Markov state and as a sentence terminator.
func Tokenize(text string) []string {
	cleaned := stripPattern.ReplaceAllString(strings.ToLower(text), "")
	return tokenPattern.FindAllString(cleaned, -1)
}
