// Package tokenizer provides text tokenisation for the question answering
// engine. It lower-cases input, segments it into words on Unicode (UAX #29)
// word boundaries, removes stop-words and drops punctuation-only tokens.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// joiners keeps hyphenated compounds such as "self-driving" in one token.
// Apostrophes and periods already join mid-word under UAX #29.
var joiners = &words.Joiners[string]{
	Middle: []rune{'-'},
}

// apostrophes folds typographic apostrophes so "don’t" matches the
// stop-word "don't".
var apostrophes = strings.NewReplacer("’", "'", "ʼ", "'")

// Tokenizer turns text into ordered sequences of significant terms.
// A Tokenizer is immutable and safe for concurrent use.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// New builds a Tokenizer that removes the given stop-words.
func New(stopWords []string) *Tokenizer {
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopWords: set}
}

// Default returns a Tokenizer using the built-in English stop-word list.
func Default() *Tokenizer {
	return New(EnglishStopwords())
}

// Tokenize breaks text into lower-cased word tokens in document order.
// Duplicates are kept. Stop-words and tokens made only of punctuation are
// removed; tokens that mix letters and punctuation are kept whole.
func (t *Tokenizer) Tokenize(text string) []string {
	text = apostrophes.Replace(strings.ToLower(text))
	tokens := make([]string, 0, len(text)/6)
	iter := words.FromString(text)
	iter.Joiners(joiners)
	for iter.Next() {
		word := iter.Value()
		if !significant(word) {
			continue
		}
		if t.IsStopWord(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// IsStopWord reports whether word is on the stop-word list.
func (t *Tokenizer) IsStopWord(word string) bool {
	_, ok := t.stopWords[word]
	return ok
}

// StopWordCount returns the size of the stop-word list.
func (t *Tokenizer) StopWordCount() int {
	return len(t.stopWords)
}

// significant reports whether word carries at least one rune that is not
// whitespace, punctuation or a symbol.
func significant(word string) bool {
	for _, r := range word {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		return true
	}
	return false
}
