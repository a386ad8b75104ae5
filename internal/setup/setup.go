// Package setup builds the pieces shared by the CLI and the service from a
// loaded configuration.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/resilience"
)

// Tokenizer returns the tokenizer for cfg, using the stop-word file when
// one is configured.
func Tokenizer(cfg *config.Config) (*tokenizer.Tokenizer, error) {
	if cfg.Answer.StopwordsPath == "" {
		tok := tokenizer.Default()
		slog.Debug("built-in stop-words loaded", "count", tok.StopWordCount())
		return tok, nil
	}
	words, err := tokenizer.LoadStopwords(cfg.Answer.StopwordsPath)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrUsage, 0, "loading stop-words: %v", err)
	}
	tok := tokenizer.New(words)
	slog.Debug("custom stop-words loaded", "path", cfg.Answer.StopwordsPath, "count", tok.StopWordCount())
	return tok, nil
}

// Executor builds an executor from the answer and corpus settings.
func Executor(cfg *config.Config, m *metrics.Metrics) (*executor.Executor, error) {
	tok, err := Tokenizer(cfg)
	if err != nil {
		return nil, err
	}
	return executor.New(tok, executor.Options{
		FileMatches:     cfg.Answer.FileMatches,
		SentenceMatches: cfg.Answer.SentenceMatches,
		Workers:         cfg.Corpus.Workers,
	}, m)
}

// LoadCorpus reads the corpus from the configured source. For the dir
// source location is the directory; for postgres it names the table and
// falls back to corpus.table when empty.
func LoadCorpus(ctx context.Context, cfg *config.Config, location string) (*corpus.Corpus, error) {
	switch cfg.Corpus.Source {
	case config.SourceDir:
		if location == "" {
			location = cfg.Corpus.Path
		}
		if location == "" {
			return nil, apperrors.Usagef("no corpus directory given")
		}
		return corpus.NewDirLoader(location, cfg.Corpus.Extensions, cfg.Corpus.SkipUnreadable).Load(ctx)
	case config.SourcePostgres:
		if location == "" {
			location = cfg.Corpus.Table
		}
		var db *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", resilience.Backoff{
			Attempts: 3,
			Initial:  500 * time.Millisecond,
			Jitter:   0.1,
		}, func(context.Context) error {
			var err error
			db, err = postgres.New(cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrCorpusRead, err)
		}
		defer db.Close()
		return corpus.NewPostgresLoader(db, location).Load(ctx)
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 0, "unknown corpus source %q", cfg.Corpus.Source)
	}
}
