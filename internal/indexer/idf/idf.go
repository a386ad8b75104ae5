// Package idf computes inverse document frequencies over a collection of
// token sequences: idf(t) = ln(N / df(t)), where N is the number of items
// and df(t) the number of items containing t at least once.
package idf

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/index"
)

// Table maps a term to its IDF within the collection it was computed over.
// Tables from different collections are not interchangeable.
type Table struct {
	values map[string]float64
	items  int
}

// Compute builds the IDF table for items. Every term present in at least one
// item gets an entry. Items with no tokens still count towards N.
func Compute(items *index.Collection) Table {
	docFreq := make(map[string]int)
	for _, item := range items.Items() {
		for term := range index.TermSet(item.Tokens) {
			docFreq[term]++
		}
	}
	n := float64(items.Len())
	values := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		values[term] = math.Log(n / float64(df))
	}
	return Table{values: values, items: items.Len()}
}

// Weight returns the IDF of term, or 0 for a term the table has never seen.
func (t Table) Weight(term string) float64 {
	return t.values[term]
}

// Len returns the number of distinct terms.
func (t Table) Len() int {
	return len(t.values)
}

// Items returns N, the size of the collection the table was computed over.
func (t Table) Items() int {
	return t.items
}

// FromMap builds a Table from precomputed values.
func FromMap(values map[string]float64) Table {
	cp := make(map[string]float64, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Table{values: cp}
}
