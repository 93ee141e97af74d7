package markov

import (
	"fmt"
	"strings"

	"github.com/mb-14/gomarkov"
)

const (
	// Order 2 favors local grammaticality while keeping lexical diversity.
	ngramOrder = 2

	// Walks longer than this are abandoned; a chain with a cycle and no
	// reachable end token would otherwise never terminate.
	maxWalkTokens = 70
)

// NgramModel wraps a second-order chain together with the tokenized sentences
// it was trained on. The sources are what the anti-plagiarism overlap check
// compares candidates against.
type NgramModel struct {
	chain   *gomarkov.Chain
	sources [][]string
}

// BuildNgramModel trains an order-2 chain over prepared sentences (trimmed,
// terminally punctuated, ≥ 3 words each).
func BuildNgramModel(sentences []string) (m *NgramModel, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ngram build panicked: %v", r)
		}
	}()

	chain := gomarkov.NewChain(ngramOrder)
	sources := make([][]string, 0, len(sentences))
	for _, s := range sentences {
		words := strings.Fields(s)
		if len(words) == 0 {
			continue
		}
		chain.Add(words)
		sources = append(sources, words)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sentences to train on")
	}
	return &NgramModel{chain: chain, sources: sources}, nil
}

// MakeSentence attempts up to tries walks and returns the first candidate
// whose longest contiguous word run shared with any single source sentence
// does not exceed maxOverlapRatio of that source's word count. Low overlap is
// achieved by rejecting and retrying, never by editing a candidate.
func (m *NgramModel) MakeSentence(tries int, maxOverlapRatio float64) (string, bool) {
	for i := 0; i < tries; i++ {
		words, ok := m.walk()
		if !ok {
			continue
		}
		if m.exceedsOverlap(words, maxOverlapRatio) {
			continue
		}
		return strings.Join(words, " "), true
	}
	return "", false
}

// walk runs the chain from its start state until the end token.
func (m *NgramModel) walk() ([]string, bool) {
	state := make(gomarkov.NGram, 0, ngramOrder)
	for i := 0; i < ngramOrder; i++ {
		state = append(state, gomarkov.StartToken)
	}

	var tokens []string
	for len(tokens) < maxWalkTokens {
		next, err := m.chain.Generate(state)
		if err != nil {
			return nil, false
		}
		if next == gomarkov.EndToken {
			return tokens, len(tokens) > 0
		}
		tokens = append(tokens, next)
		state = append(state[1:], next)
	}
	return nil, false
}

// exceedsOverlap reports whether some source sentence shares a contiguous
// word run with the candidate longer than ratio × that source's length.
func (m *NgramModel) exceedsOverlap(words []string, ratio float64) bool {
	for _, src := range m.sources {
		run := longestCommonRun(words, src)
		if float64(run) > ratio*float64(len(src)) {
			return true
		}
	}
	return false
}

// longestCommonRun is the length of the longest common contiguous word run
// between a and b.
func longestCommonRun(a, b []string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		cur[0] = 0
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}
