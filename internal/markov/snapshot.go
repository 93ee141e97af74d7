package markov

import (
	"log"
	"strings"
)

// TransitionTable maps each token to the multiset of tokens observed
// immediately after it anywhere in the corpus.
type TransitionTable map[string][]string

// Snapshot is one live model pair. A snapshot is immutable once built; the
// coordinator installs new ones atomically and readers hold whatever they
// loaded for the duration of a generation call.
type Snapshot struct {
	Table TransitionTable
	Ngram *NgramModel // nil when no suitable corpus text exists
}

// BuildSnapshot rebuilds both model representations from the full corpus.
// It works on private temporaries only; installing the result is the
// coordinator's job. An n-gram construction failure degrades to an absent
// n-gram model without losing the transition table.
func BuildSnapshot(lines []string) *Snapshot {
	table := TransitionTable{}
	for _, line := range lines {
		tokens := Tokenize(line)
		if len(tokens) < 2 {
			continue
		}
		for i := 0; i < len(tokens)-1; i++ {
			table[tokens[i]] = append(table[tokens[i]], tokens[i+1])
		}
	}

	// Every line must read as a complete sentence before it can feed the
	// n-gram chain; fragments under 3 words add noise, not grammar.
	var sentences []string
	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
			text += "."
		}
		if len(strings.Fields(text)) >= 3 {
			sentences = append(sentences, text)
		}
	}

	var ngram *NgramModel
	if len(sentences) > 0 {
		m, err := BuildNgramModel(sentences)
		if err != nil {
			log.Printf("[markov] ngram model unavailable: %v", err)
		} else {
			ngram = m
		}
	}

	return &Snapshot{Table: table, Ngram: ngram}
}
