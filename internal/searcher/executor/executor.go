// Package executor runs the answering pipeline: tokenize the corpus, compute
// document IDFs, rank files, split the best files into sentences, compute a
// fresh IDF table over those sentences and rank them.
package executor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/idf"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/tracing"
)

// Pipeline stage names, used for spans and the stage duration metric.
const (
	StageTokenizeCorpus   = "tokenize_corpus"
	StageDocumentIDF      = "document_idf"
	StageParseQuery       = "parse_query"
	StageRankFiles        = "rank_files"
	StageExtractSentences = "extract_sentences"
	StageSentenceIDF      = "sentence_idf"
	StageRankSentences    = "rank_sentences"
)

// Options are the fixed parameters of a run.
type Options struct {
	// FileMatches is how many top documents feed sentence extraction.
	FileMatches int
	// SentenceMatches is how many sentences are returned.
	SentenceMatches int
	// Workers bounds the goroutines tokenizing the corpus.
	Workers int
}

// DefaultOptions returns one file match, one sentence match.
func DefaultOptions() Options {
	return Options{FileMatches: 1, SentenceMatches: 1, Workers: 4}
}

// Result is the outcome of one question.
type Result struct {
	Query      string                  `json:"query"`
	Terms      []string                `json:"terms"`
	Files      []ranker.ScoredDoc      `json:"files"`
	Sentences  []ranker.ScoredSentence `json:"sentences"`
	Candidates int                     `json:"candidates"`
}

// Lines returns the answer sentences, best first.
func (r *Result) Lines() []string {
	return ranker.SentenceTexts(r.Sentences)
}

// Executor runs questions against corpora.
type Executor struct {
	tok     *tokenizer.Tokenizer
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates an Executor. m may be nil.
func New(tok *tokenizer.Tokenizer, opts Options, m *metrics.Metrics) (*Executor, error) {
	if opts.FileMatches < 1 || opts.SentenceMatches < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 0,
			"file and sentence matches must be positive, got %d and %d", opts.FileMatches, opts.SentenceMatches)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Executor{
		tok:     tok,
		opts:    opts,
		metrics: m,
		logger:  slog.Default().With("component", "answer-executor"),
	}, nil
}

// Options returns the parameters the executor runs with.
func (e *Executor) Options() Options {
	return e.opts
}

// Answer prepares c and answers a single question against it.
func (e *Executor) Answer(ctx context.Context, c *corpus.Corpus, question string) (*Result, error) {
	prepared, err := e.Prepare(ctx, c)
	if err != nil {
		return nil, err
	}
	return prepared.Answer(ctx, question)
}

// Prepare tokenizes every document and computes the document IDF table.
// Tokenization fans out over Options.Workers goroutines; the IDF reduction
// starts only after every document is tokenized.
func (e *Executor) Prepare(ctx context.Context, c *corpus.Corpus) (*Prepared, error) {
	if c == nil || c.Len() == 0 {
		return nil, apperrors.New(apperrors.ErrEmptyCorpus, 0, "nothing to answer from")
	}
	ctx, root := tracing.StartSpan(ctx, "prepare", traceID(ctx))
	defer func() {
		root.End()
		root.Log(e.logger)
	}()

	docs := c.Documents()
	tokens := make([][]string, len(docs))
	_, span := tracing.StartChildSpan(ctx, StageTokenizeCorpus)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tokens[i] = e.tok.Tokenize(doc.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tokenizing corpus: %w", err)
	}
	files := index.NewCollection(len(docs))
	for i, doc := range docs {
		files.Add(doc.ID, tokens[i])
		e.logger.Debug("document tokenized", "doc_id", doc.ID, "token_count", len(tokens[i]))
	}
	span.SetAttr("documents", files.Len())
	e.observe(StageTokenizeCorpus, span.End())

	_, span = tracing.StartChildSpan(ctx, StageDocumentIDF)
	idfs := idf.Compute(files)
	span.SetAttr("items", idfs.Items())
	span.SetAttr("terms", idfs.Len())
	e.observe(StageDocumentIDF, span.End())

	if e.metrics != nil {
		e.metrics.CorpusDocuments.Set(float64(files.Len()))
		e.metrics.CorpusTokens.Set(float64(files.TokenCount()))
		e.metrics.VocabularySize.Set(float64(idfs.Len()))
	}
	e.logger.Info("corpus prepared",
		"documents", files.Len(),
		"tokens", files.TokenCount(),
		"vocabulary", idfs.Len(),
	)
	return &Prepared{
		exec:   e,
		corpus: c,
		files:  files,
		idfs:   idfs,
		digest: c.Digest(),
	}, nil
}

func (e *Executor) observe(stage string, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (e *Executor) countQuery(result string) {
	if e.metrics == nil {
		return
	}
	e.metrics.QueriesTotal.WithLabelValues(result).Inc()
}

func traceID(ctx context.Context) string {
	if id := logger.RequestID(ctx); id != "" {
		return id
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "local"
	}
	return hex.EncodeToString(b[:])
}
