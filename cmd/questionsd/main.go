// questionsd serves answers over HTTP from a corpus prepared once at
// startup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/setup"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/questions/pkg/redis"
)

func main() {
	flags := pflag.NewFlagSet("questionsd", pflag.ExitOnError)
	configPath := flags.String("config", "configs/development.yaml", "path to config file")
	corpusPath := flags.String("corpus", "", "corpus directory or table (overrides corpus.path / corpus.table)")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperrors.ExitError)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.Info("starting answer service", "port", cfg.Server.Port, "source", cfg.Corpus.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer shutdownMetrics(context.Background())
	}

	exec, err := setup.Executor(cfg, m)
	if err != nil {
		slog.Error("failed to create executor", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
	docs, err := setup.LoadCorpus(ctx, cfg, *corpusPath)
	if err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
	prepared, err := exec.Prepare(ctx, docs)
	if err != nil {
		slog.Error("failed to prepare corpus", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
	slog.Info("corpus prepared", "documents", prepared.Documents(), "digest", prepared.Digest())

	checker := health.NewChecker()
	checker.Register("corpus", health.CorpusCheck(prepared.Documents))

	var answerCache *cache.AnswerCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, answer caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			answerCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.PingCheck(redisClient, true))
			slog.Info("answer cache enabled", "addr", redisClient.Addr(), "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000, m)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("query events enabled", "topic", producer.Topic())
	}

	aggregator := analytics.NewAggregator()
	analyticsH := analytics.NewHandler(aggregator)
	h := handler.New(prepared, answerCache, collector, aggregator)

	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := ratelimit.New(cfg.Server.RateLimit, time.Minute)
		defer limiter.Close()
		chain = middleware.RateLimit(limiter)(chain)
		slog.Info("rate limiting enabled", "per_minute", cfg.Server.RateLimit)
	}
	chain = middleware.Logging(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("answer service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(apperrors.ExitError)
	}

	slog.Info("answer service stopped")
}
