package markov

import (
	"fmt"
	"os"
	"strings"
)

// ForbiddenEndings is the set of closed-class words that must never be the
// final word of a generated sentence. It is vocabulary data, not logic: the
// default set covers Russian, and deployments may supply their own file.
type ForbiddenEndings map[string]struct{}

// Conjunctions, prepositions, particles, interjections and a few pronouns
// and determiners that read as broken when a sentence stops on them.
var defaultForbiddenEndings = []string{
	"и", "или", "но", "а", "да", "либо", "зато", "однако", "хотя", "что", "чтобы", "если", "пока", "когда",
	"в", "на", "под", "над", "за", "перед", "через", "к", "от", "из", "с", "у", "о", "об", "про", "по", "до",
	"же", "бы", "ли", "ведь", "вот", "ну", "не", "ни", "даже", "лишь", "только", "аж",
	"ой", "ах", "эх", "увы", "ух", "ура",
	"это", "как", "так", "где", "куда", "откуда", "который", "которая", "которое", "которые",
	"чей", "чья", "чьё", "чьи", "какой", "какая", "какое", "какие", "мой", "твой", "его", "её", "наш", "ваш", "их",
}

// DefaultForbiddenEndings returns the built-in Russian set.
func DefaultForbiddenEndings() ForbiddenEndings {
	return NewForbiddenEndings(defaultForbiddenEndings)
}

// NewForbiddenEndings builds a set from the given words, case-folded.
func NewForbiddenEndings(words []string) ForbiddenEndings {
	set := make(ForbiddenEndings, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// LoadForbiddenEndings reads a whitespace/newline-separated word list.
func LoadForbiddenEndings(path string) (ForbiddenEndings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forbidden endings %s: %w", path, err)
	}
	words := strings.Fields(string(data))
	if len(words) == 0 {
		return nil, fmt.Errorf("forbidden endings file %s is empty", path)
	}
	return NewForbiddenEndings(words), nil
}

// Contains reports whether the word, case-folded, is in the set.
func (f ForbiddenEndings) Contains(word string) bool {
	_, ok := f[strings.ToLower(word)]
	return ok
}
