package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/tokenizer"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Python is a high-level, general-purpose programming language. Its design
        philosophy emphasizes code readability with the use of significant indentation.
        Python is dynamically typed and garbage-collected. It supports multiple
        programming paradigms, including structured, object-oriented and functional
        programming. It was created by Guido van Rossum and first released in 1991.`,
	"long": strings.Repeat(`Information retrieval ranks documents by how well their words
        match a query. Term frequency rewards documents that use a query word often,
        while inverse document frequency discounts words that appear everywhere. A
        question answering system can first pick the most relevant documents and then
        the most relevant sentences inside them, weighting each matched word by how
        rare it is among the candidate sentences. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	tok := tokenizer.Default()
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tok.Tokenize(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	tok := tokenizer.Default()
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := tok.Tokenize(text)
			_ = tokens
		}
	})
}

func BenchmarkSplitSentences(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				sentences := tokenizer.SplitSentences(text)
				_ = sentences
			}
		})
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	tok := tokenizer.Default()
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "self-driving cars answer questions from documents "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tok.Tokenize(text)
				_ = tokens
			}
		})
	}
}
