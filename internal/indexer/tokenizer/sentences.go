package tokenizer

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/sentences"
)

//go:embed data/abbreviations.txt
var abbreviationList []byte

var abbreviations = func() map[string]struct{} {
	words, err := ParseStopwords(bytes.NewReader(abbreviationList))
	if err != nil {
		panic(fmt.Sprintf("embedded abbreviation list is invalid: %v", err))
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// SplitSentences segments text into sentences. Every line is treated as its
// own passage, so a newline always ends a sentence. A segment that ends in an
// abbreviation such as "Dr." or "U.S." is joined with the one after it.
// Surrounding whitespace is trimmed and blank segments are dropped.
func SplitSentences(text string) []string {
	out := make([]string, 0, 16)
	var pending strings.Builder
	for _, passage := range strings.Split(text, "\n") {
		passage = strings.TrimSpace(passage)
		if passage == "" {
			continue
		}
		iter := sentences.FromString(passage)
		for iter.Next() {
			segment := iter.Value()
			pending.WriteString(segment)
			if endsWithAbbreviation(segment) {
				continue
			}
			out = appendSentence(out, pending.String())
			pending.Reset()
		}
		out = appendSentence(out, pending.String())
		pending.Reset()
	}
	return out
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	return append(out, s)
}

// endsWithAbbreviation reports whether the last word of segment is a known
// abbreviation or a dotted initialism.
func endsWithAbbreviation(segment string) bool {
	segment = strings.TrimRightFunc(segment, unicode.IsSpace)
	if !strings.HasSuffix(segment, ".") {
		return false
	}
	word := segment[strings.LastIndexFunc(segment, unicode.IsSpace)+1:]
	word = strings.TrimLeftFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	word = strings.ToLower(strings.TrimSuffix(word, "."))
	if word == "" {
		return false
	}
	if _, ok := abbreviations[word]; ok {
		return true
	}
	return isInitialism(word)
}

// isInitialism reports whether word is single letters joined by periods,
// as in "j", "u.s" or "e.g".
func isInitialism(word string) bool {
	for _, part := range strings.Split(word, ".") {
		runes := []rune(part)
		if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
			return false
		}
	}
	return true
}
