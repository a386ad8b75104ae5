// Package parser turns a free-text question into a query: the set of
// distinct significant terms produced by the tokenizer.
package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/tokenizer"
)

// Query is a deduplicated set of normalized terms. Terms keeps the order of
// first occurrence so logs and cache keys are stable.
type Query struct {
	Raw   string
	Terms []string
	set   map[string]struct{}
}

// Parse tokenizes raw and removes duplicate terms.
func Parse(tok *tokenizer.Tokenizer, raw string) *Query {
	q := &Query{
		Raw:   raw,
		Terms: make([]string, 0),
		set:   make(map[string]struct{}),
	}
	if strings.TrimSpace(raw) == "" {
		return q
	}
	for _, term := range tok.Tokenize(raw) {
		q.add(term)
	}
	return q
}

// FromTerms builds a query directly from already normalized terms.
func FromTerms(terms ...string) *Query {
	q := &Query{
		Terms: make([]string, 0, len(terms)),
		set:   make(map[string]struct{}, len(terms)),
	}
	for _, term := range terms {
		q.add(term)
	}
	q.Raw = strings.Join(q.Terms, " ")
	return q
}

func (q *Query) add(term string) {
	if _, seen := q.set[term]; seen {
		return
	}
	q.set[term] = struct{}{}
	q.Terms = append(q.Terms, term)
}

// Len returns the number of distinct terms.
func (q *Query) Len() int {
	return len(q.Terms)
}

// Empty reports whether the query has no significant terms.
func (q *Query) Empty() bool {
	return len(q.Terms) == 0
}
