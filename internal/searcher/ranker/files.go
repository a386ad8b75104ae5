// Package ranker scores documents and sentences against a query.
//
// Files are ranked by summed TF-IDF of the query terms. Sentences are ranked
// by the summed IDF of the query terms they contain, and the sentences that
// share the best score are ordered by query term density.
package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/idf"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/parser"
)

// ScoredDoc is a document identifier with its TF-IDF score.
type ScoredDoc struct {
	DocID  string  `json:"doc_id"`
	Score  float64 `json:"score"`
	Length int     `json:"length"`
}

// ScoreFiles computes the TF-IDF score of every file, in collection order.
// A file without tokens scores 0. Query terms missing from idfs weigh 0.
func ScoreFiles(query *parser.Query, files *index.Collection, idfs idf.Table) []ScoredDoc {
	scored := make([]ScoredDoc, 0, files.Len())
	for _, item := range files.Items() {
		scored = append(scored, ScoredDoc{
			DocID:  item.ID,
			Score:  tfidf(query, item.Tokens, idfs),
			Length: len(item.Tokens),
		})
	}
	return scored
}

// RankFiles returns every file scored and sorted by descending score. Ties
// keep collection order.
func RankFiles(query *parser.Query, files *index.Collection, idfs idf.Table) []ScoredDoc {
	scored := ScoreFiles(query, files, idfs)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// TopFiles returns the n best files, best first. Fewer than n files yields
// all of them.
func TopFiles(query *parser.Query, files *index.Collection, idfs idf.Table, n int) []ScoredDoc {
	return limit(RankFiles(query, files, idfs), n)
}

// DocIDs returns the identifiers of docs in order.
func DocIDs(docs []ScoredDoc) []string {
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.DocID)
	}
	return out
}

func tfidf(query *parser.Query, tokens []string, idfs idf.Table) float64 {
	if len(tokens) == 0 {
		return 0
	}
	counts := index.TermCounts(tokens)
	length := float64(len(tokens))
	var score float64
	for _, term := range query.Terms {
		tf := float64(counts[term]) / length
		score += tf * idfs.Weight(term)
	}
	return score
}

func limit[T any](items []T, n int) []T {
	if n <= 0 {
		return items[:0]
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
