package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/idf"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/parser"
)

// ScoredSentence is a sentence with its matching word measure and query
// term density.
type ScoredSentence struct {
	Sentence string  `json:"sentence"`
	Score    float64 `json:"score"`
	Density  float64 `json:"density"`
}

// ScoreSentences computes, in collection order, the sum of IDFs of the query
// terms each sentence contains and the fraction of its tokens that are
// distinct query terms.
func ScoreSentences(query *parser.Query, sentences *index.Collection, idfs idf.Table) []ScoredSentence {
	scored := make([]ScoredSentence, 0, sentences.Len())
	for _, item := range sentences.Items() {
		present := index.TermSet(item.Tokens)
		var score float64
		matched := 0
		for _, term := range query.Terms {
			if _, ok := present[term]; !ok {
				continue
			}
			score += idfs.Weight(term)
			matched++
		}
		var density float64
		if len(item.Tokens) > 0 {
			density = float64(matched) / float64(len(item.Tokens))
		}
		scored = append(scored, ScoredSentence{
			Sentence: item.ID,
			Score:    score,
			Density:  density,
		})
	}
	return scored
}

// RankSentences returns the top tier, the sentences sharing the highest
// score, sorted by descending density. Ties keep collection order. Sentences
// below the top tier are not returned.
func RankSentences(query *parser.Query, sentences *index.Collection, idfs idf.Table) []ScoredSentence {
	scored := ScoreSentences(query, sentences, idfs)
	if len(scored) == 0 {
		return scored
	}
	best := scored[0].Score
	for _, s := range scored[1:] {
		if s.Score > best {
			best = s.Score
		}
	}
	tier := make([]ScoredSentence, 0, len(scored))
	for _, s := range scored {
		if s.Score == best {
			tier = append(tier, s)
		}
	}
	sort.SliceStable(tier, func(i, j int) bool {
		return tier[i].Density > tier[j].Density
	})
	return tier
}

// TopSentences returns up to n sentences from the top tier.
func TopSentences(query *parser.Query, sentences *index.Collection, idfs idf.Table, n int) []ScoredSentence {
	return limit(RankSentences(query, sentences, idfs), n)
}

// SentenceTexts returns the text of each scored sentence in order.
func SentenceTexts(scored []ScoredSentence) []string {
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Sentence)
	}
	return out
}
