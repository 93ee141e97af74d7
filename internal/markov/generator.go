package markov

import (
	"log"
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Serving defaults for the caller-facing generation API.
const (
	DefaultMinWords     = 8
	DefaultMaxWords     = 20
	DefaultMinSentences = 2
	DefaultMaxSentences = 5
)

const (
	// A table below this many distinct keys is considered cold and serves
	// canned sentences instead of degenerate walks.
	coldTableKeys = 50

	ngramPreference = 0.7
	ngramAttempts   = 15
	ngramTries      = 100
	ngramMaxOverlap = 0.4

	// Widened budget for the last-resort retry when both strategies came
	// back short.
	wideMaxWords = 30
)

// Canned output for a cold model. Callers always get a sentence, never an
// error, so an under-trained bot still has something to say.
var baseSentences = []string{
	"Интересный факт о том, что в мире много интересного.",
	"Знаете ли вы, что каждый день происходит что-то новое.",
	"Мысли о будущем всегда вызывают разные эмоции у людей.",
	"В прошлом веке технологии развивались стремительно.",
	"Путешествие в горы дарит незабываемые впечатления.",
	"Современная литература предлагает много интересных идей.",
	"История человечества полна удивительных открытий.",
	"Наука не стоит на месте и постоянно развивается.",
}

const (
	customFallbackSentence   = "Интересно, что природа всегда находит способ удивить нас своей красотой."
	dispatchFallbackSentence = "Произошла ошибка при генерации текста. Пожалуйста, попробуйте ещё раз."
	storyFallbackSentence    = "Произошла ошибка при генерации истории. Пожалуйста, попробуйте ещё раз."
)

// SnapshotSource provides the currently live model pair.
type SnapshotSource interface {
	Snapshot() *Snapshot
}

// Generator produces sentences and stories from whatever snapshot is live at
// call time. It never blocks on rebuilds and never returns empty text.
type Generator struct {
	source    SnapshotSource
	forbidden ForbiddenEndings
}

// NewGenerator wires a generator to a snapshot source and an endings set.
func NewGenerator(source SnapshotSource, forbidden ForbiddenEndings) *Generator {
	return &Generator{source: source, forbidden: forbidden}
}

// CustomSentence generates a sentence by randomly walking the transition
// table. Only alphabetic tokens count toward the word budget; the walk stops
// on terminal punctuation once minWords is reached, on the budget, or on a
// dead-end token.
func (g *Generator) CustomSentence(minWords, maxWords int) (sentence string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[markov] custom generation recovered: %v", r)
			sentence = customFallbackSentence
		}
	}()
	return g.customFrom(g.source.Snapshot(), minWords, maxWords)
}

func (g *Generator) customFrom(snap *Snapshot, minWords, maxWords int) string {
	table := snap.Table
	if len(table) <= coldTableKeys {
		return baseSentences[rand.Intn(len(baseSentences))]
	}

	var starts []string
	for key := range table {
		if isWord(key) && !g.forbidden.Contains(key) {
			starts = append(starts, key)
		}
	}
	if len(starts) == 0 {
		return baseSentences[rand.Intn(len(baseSentences))]
	}

	start := starts[rand.Intn(len(starts))]
	return walkFrom(table, start, minWords, maxWords)
}

// walkFrom performs the random table walk from a fixed start token.
func walkFrom(table TransitionTable, start string, minWords, maxWords int) string {
	current := start
	words := []string{capitalize(current)}
	length := 1

	for length < maxWords {
		successors := table[current]
		if len(successors) == 0 {
			break
		}
		next := successors[rand.Intn(len(successors))]
		words = append(words, next)
		current = next
		if isWord(next) {
			length++
		}
		if isTerminal(next) && length >= minWords {
			break
		}
	}

	if !isTerminal(words[len(words)-1]) {
		words = append(words, ".")
	}
	return joinTokens(words)
}

// NgramSentence generates via the n-gram chain, falling back to the
// transition-table walk when the chain is absent or every attempt either
// overlapped the corpus too much or ended on a forbidden word.
func (g *Generator) NgramSentence(attempts int, maxOverlapRatio float64) string {
	return g.ngramFrom(g.source.Snapshot(), attempts, maxOverlapRatio)
}

func (g *Generator) ngramFrom(snap *Snapshot, attempts int, maxOverlapRatio float64) string {
	if snap.Ngram == nil {
		return g.customFrom(snap, DefaultMinWords, DefaultMaxWords)
	}
	for i := 0; i < attempts; i++ {
		sentence, ok := snap.Ngram.MakeSentence(ngramTries, maxOverlapRatio)
		if !ok {
			continue
		}
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		last := strings.TrimRight(words[len(words)-1], ".!?")
		if g.forbidden.Contains(last) {
			continue
		}
		return capitalize(sentence)
	}
	return g.customFrom(snap, DefaultMinWords, DefaultMaxWords)
}

// Sentence is the dispatcher: 70% n-gram when one is installed, otherwise the
// table walk. A short result gets one retry with a coin-flip strategy, then a
// widened table walk; the result may still be short, but is never empty.
func (g *Generator) Sentence(minWords, maxWords int) (sentence string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[markov] sentence generation recovered: %v", r)
			sentence = dispatchFallbackSentence
		}
	}()

	snap := g.source.Snapshot()
	if rand.Float64() < ngramPreference && snap.Ngram != nil {
		sentence = g.ngramFrom(snap, ngramAttempts, ngramMaxOverlap)
	} else {
		sentence = g.customFrom(snap, minWords, maxWords)
	}

	if len(strings.Fields(sentence)) < minWords {
		if rand.Float64() < 0.5 {
			sentence = g.ngramFrom(snap, ngramAttempts, ngramMaxOverlap)
		} else {
			sentence = g.customFrom(snap, minWords, maxWords)
		}
		if len(strings.Fields(sentence)) < minWords {
			sentence = g.customFrom(snap, minWords, wideMaxWords)
		}
	}
	return sentence
}

// Story joins a random number of independently generated sentences.
func (g *Generator) Story(minSentences, maxSentences, minWords, maxWords int) (story string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[markov] story generation recovered: %v", r)
			story = storyFallbackSentence
		}
	}()

	if minSentences < 1 {
		minSentences = 1
	}
	if maxSentences < minSentences {
		maxSentences = minSentences
	}
	n := minSentences + rand.Intn(maxSentences-minSentences+1)
	sentences := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sentences = append(sentences, g.Sentence(minWords, maxWords))
	}
	return strings.Join(sentences, " ")
}

func isWord(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isTerminal(token string) bool {
	return token == "." || token == "!" || token == "?"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

var punctuationJoiner = strings.NewReplacer(" ,", ",", " .", ".", " !", "!", " ?", "?")

// joinTokens renders a token sequence with punctuation attached to the
// preceding word.
func joinTokens(tokens []string) string {
	return punctuationJoiner.Replace(strings.Join(tokens, " "))
}
