package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/idf"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/ranker"
)

// BenchmarkQueryParse measures query parsing latency for questions of
// varying length.
func BenchmarkQueryParse(b *testing.B) {
	tok := tokenizer.Default()
	queries := []struct {
		name  string
		query string
	}{
		{"short", "Who created Python?"},
		{"stopwords", "What is the name of the one who did it?"},
		{"long", "Which general-purpose programming language emphasizes code readability and was first released in 1991?"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				query := parser.Parse(tok, q.query)
				_ = query
			}
		})
	}
}

func BenchmarkRankFiles(b *testing.B) {
	query := parser.FromTerms("python", "guido", "readability")
	for _, n := range []int{100, 1000, 10000} {
		files := syntheticCollection(n, 200)
		idfs := idf.Compute(files)
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ranked := ranker.TopFiles(query, files, idfs, 1)
				_ = ranked
			}
		})
	}
}

// BenchmarkRankFilesMultiTerm measures file ranking with an increasing
// number of query terms.
func BenchmarkRankFilesMultiTerm(b *testing.B) {
	files := syntheticCollection(1000, 200)
	idfs := idf.Compute(files)
	for _, n := range []int{1, 3, 6, 12} {
		query := parser.FromTerms(vocabulary[:n]...)
		b.Run(fmt.Sprintf("terms_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				ranked := ranker.RankFiles(query, files, idfs)
				_ = ranked
			}
		})
	}
}

func BenchmarkRankSentences(b *testing.B) {
	query := parser.FromTerms("python", "guido")
	sentences := syntheticCollection(500, 12)
	idfs := idf.Compute(sentences)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		top := ranker.TopSentences(query, sentences, idfs, 3)
		_ = top
	}
}

func benchCorpus(n int) *corpus.Corpus {
	texts := make(map[string]string, n)
	for i := 0; i < n; i++ {
		var sb strings.Builder
		for j := 0; j < 20; j++ {
			fmt.Fprintf(&sb, "Document %d talks about %s and %s in sentence %d. ",
				i, vocabulary[(i+j)%len(vocabulary)], vocabulary[(i*j)%len(vocabulary)], j)
		}
		texts[fmt.Sprintf("doc-%04d.txt", i)] = sb.String()
	}
	return corpus.FromMap(texts)
}

// BenchmarkPrepare measures corpus tokenization and document IDF with
// different worker counts.
func BenchmarkPrepare(b *testing.B) {
	c := benchCorpus(500)
	for _, workers := range []int{1, 4, 8} {
		e, err := executor.New(tokenizer.Default(), executor.Options{FileMatches: 1, SentenceMatches: 1, Workers: workers}, nil)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(c.Size()))
			for i := 0; i < b.N; i++ {
				if _, err := e.Prepare(context.Background(), c); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkAnswer measures a full question against a prepared corpus.
func BenchmarkAnswer(b *testing.B) {
	e, err := executor.New(tokenizer.Default(), executor.Options{FileMatches: 3, SentenceMatches: 3, Workers: 4}, nil)
	if err != nil {
		b.Fatal(err)
	}
	p, err := e.Prepare(context.Background(), benchCorpus(500))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Answer(context.Background(), "Which document talks about guido and readability?"); err != nil {
			b.Fatal(err)
		}
	}
}
