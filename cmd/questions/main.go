// questions answers a free-text question from a directory of text files:
// it picks the most relevant documents by TF-IDF and prints their best
// matching sentences, one per line.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/setup"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/logger"
)

const usage = "Usage: questions [flags] <corpus>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		configPath      string
		query           string
		fileMatches     int
		sentenceMatches int
		logLevel        string
		stopwordsPath   string
		source          string
	)
	flags := pflag.NewFlagSet("questions", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.StringVarP(&query, "query", "q", "", "question to answer (prompts on stdin when omitted)")
	flags.IntVar(&fileMatches, "file-matches", 1, "number of top documents to extract sentences from")
	flags.IntVar(&sentenceMatches, "sentence-matches", 1, "number of sentences to print")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&stopwordsPath, "stopwords", "", "file with one stop-word per line (replaces the English list)")
	flags.StringVar(&source, "source", "", "corpus source: dir or postgres (postgres reads the named table)")
	flags.Usage = func() {
		fmt.Fprintln(stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return apperrors.ExitOK
		}
		return apperrors.ExitUsage
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, usage)
		return apperrors.ExitUsage
	}

	base := config.Default()
	if configPath == "" {
		// Keep the terminal quiet unless the environment or a flag asks otherwise.
		base.Logging.Level = "warn"
	}
	cfg, err := config.LoadFrom(base, configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return apperrors.ExitError
	}
	if flags.Changed("file-matches") {
		cfg.Answer.FileMatches = fileMatches
	}
	if flags.Changed("sentence-matches") {
		cfg.Answer.SentenceMatches = sentenceMatches
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("stopwords") {
		cfg.Answer.StopwordsPath = stopwordsPath
	}
	if flags.Changed("source") {
		cfg.Corpus.Source = source
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)

	if err := cfg.Validate(); err != nil {
		return fail(stderr, err)
	}
	if err := answer(ctx, cfg, flags.Arg(0), query, flags.Changed("query"), stdin, stdout); err != nil {
		return fail(stderr, err)
	}
	return apperrors.ExitOK
}

func answer(ctx context.Context, cfg *config.Config, location, query string, haveQuery bool, stdin io.Reader, stdout io.Writer) error {
	exec, err := setup.Executor(cfg, nil)
	if err != nil {
		return err
	}
	docs, err := setup.LoadCorpus(ctx, cfg, location)
	if err != nil {
		return err
	}
	prepared, err := exec.Prepare(ctx, docs)
	if err != nil {
		return err
	}
	slog.Info("corpus ready", "documents", prepared.Documents(), "digest", prepared.Digest())

	if !haveQuery {
		query, err = prompt(stdin, stdout)
		if err != nil {
			return err
		}
	}

	result, err := prepared.Answer(ctx, query)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(stdout)
	for _, line := range result.Lines() {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

// prompt reads one line after printing "Query: ". EOF counts as an empty
// question.
func prompt(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "Query: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading query: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "questions: %v\n", err)
	if errors.Is(err, apperrors.ErrUsage) {
		fmt.Fprintln(stderr, usage)
	}
	return apperrors.ExitCode(err)
}
