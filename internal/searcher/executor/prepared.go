package executor

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/idf"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/tracing"
)

// Prepared is a tokenized corpus with its document IDF table. It is
// read-only and safe for concurrent Answer calls.
type Prepared struct {
	exec   *Executor
	corpus *corpus.Corpus
	files  *index.Collection
	idfs   idf.Table
	digest string
}

// Digest identifies the corpus the answers come from.
func (p *Prepared) Digest() string {
	return p.digest
}

// Documents returns the number of prepared documents.
func (p *Prepared) Documents() int {
	return p.files.Len()
}

// DocumentIDs returns the prepared document identifiers in ranking
// tie-break order.
func (p *Prepared) DocumentIDs() []string {
	return p.files.IDs()
}

// Options returns the parameters answers are computed with.
func (p *Prepared) Options() Options {
	return p.exec.opts
}

// Terms returns the deduplicated query terms question reduces to.
func (p *Prepared) Terms(question string) []string {
	return parser.Parse(p.exec.tok, question).Terms
}

// Answer ranks the prepared documents against question and extracts the
// best sentences from the top documents.
func (p *Prepared) Answer(ctx context.Context, question string) (*Result, error) {
	e := p.exec
	log := logger.FromContext(ctx).With("component", "answer-executor")
	ctx, root := tracing.StartSpan(ctx, "answer", traceID(ctx))
	defer func() {
		root.End()
		root.Log(log)
	}()

	_, span := tracing.StartChildSpan(ctx, StageParseQuery)
	query := parser.Parse(e.tok, question)
	span.SetAttr("terms", query.Len())
	e.observe(StageParseQuery, span.End())

	_, span = tracing.StartChildSpan(ctx, StageRankFiles)
	ranked := ranker.TopFiles(query, p.files, p.idfs, e.opts.FileMatches)
	e.observe(StageRankFiles, span.End())
	if err := ctx.Err(); err != nil {
		e.countQuery(metrics.ResultError)
		return nil, fmt.Errorf("answering %q: %w", question, err)
	}

	_, span = tracing.StartChildSpan(ctx, StageExtractSentences)
	sentences := p.extractSentences(ranked)
	span.SetAttr("sentences", sentences.Len())
	e.observe(StageExtractSentences, span.End())
	if e.metrics != nil {
		e.metrics.SentenceCandidates.Observe(float64(sentences.Len()))
	}

	_, span = tracing.StartChildSpan(ctx, StageSentenceIDF)
	sentenceIDFs := idf.Compute(sentences)
	span.SetAttr("items", sentenceIDFs.Items())
	span.SetAttr("terms", sentenceIDFs.Len())
	e.observe(StageSentenceIDF, span.End())
	if err := ctx.Err(); err != nil {
		e.countQuery(metrics.ResultError)
		return nil, fmt.Errorf("answering %q: %w", question, err)
	}

	_, span = tracing.StartChildSpan(ctx, StageRankSentences)
	best := ranker.TopSentences(query, sentences, sentenceIDFs, e.opts.SentenceMatches)
	e.observe(StageRankSentences, span.End())

	switch {
	case query.Empty():
		e.countQuery(metrics.ResultNoTerms)
	case len(best) == 0:
		e.countQuery(metrics.ResultNoSentences)
	default:
		e.countQuery(metrics.ResultAnswered)
	}
	log.Info("question answered",
		"query", question,
		"terms", query.Terms,
		"top_files", len(ranked),
		"candidates", sentences.Len(),
		"returned", len(best),
	)
	return &Result{
		Query:      question,
		Terms:      query.Terms,
		Files:      ranked,
		Sentences:  best,
		Candidates: sentences.Len(),
	}, nil
}

// extractSentences splits the given files into sentences and keeps those
// with at least one significant token. Identical sentences collapse into one
// entry.
func (p *Prepared) extractSentences(files []ranker.ScoredDoc) *index.Collection {
	sentences := index.NewCollection(64)
	for _, f := range files {
		text, ok := p.corpus.Text(f.DocID)
		if !ok {
			continue
		}
		for _, s := range tokenizer.SplitSentences(text) {
			tokens := p.exec.tok.Tokenize(s)
			if len(tokens) == 0 {
				continue
			}
			if sentences.Contains(s) {
				p.exec.logger.Debug("duplicate sentence collapsed", "doc_id", f.DocID, "sentence", s)
			}
			sentences.Add(s, tokens)
		}
	}
	return sentences
}
