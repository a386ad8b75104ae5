// Package handler exposes the answering pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/middleware"
)

const maxQueryLength = 4096

// Answerer is a prepared corpus; *executor.Prepared satisfies it.
type Answerer interface {
	Answer(ctx context.Context, question string) (*executor.Result, error)
	Terms(question string) []string
	Digest() string
	Documents() int
	DocumentIDs() []string
	Options() executor.Options
}

type Handler struct {
	answerer   Answerer
	cache      *cache.AnswerCache
	collector  *analytics.Collector
	aggregator *analytics.Aggregator
	logger     *slog.Logger
}

// New builds a Handler. The cache, collector and aggregator are optional.
func New(answerer Answerer, answerCache *cache.AnswerCache, collector *analytics.Collector, aggregator *analytics.Aggregator) *Handler {
	return &Handler{
		answerer:   answerer,
		cache:      answerCache,
		collector:  collector,
		aggregator: aggregator,
		logger:     slog.Default().With("component", "answer-handler"),
	}
}

// Routes registers the API endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/answer", h.Answer)
	mux.HandleFunc("GET /api/v1/corpus", h.Corpus)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Answer handles GET /api/v1/answer?q=<question>.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	if len(query) > maxQueryLength {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("query exceeds %d bytes", maxQueryLength))
		return
	}

	terms := h.answerer.Terms(query)
	var (
		result   *executor.Result
		err      error
		cacheHit bool
	)
	if h.cache != nil && len(terms) > 0 {
		opts := h.answerer.Options()
		key := cache.Key{
			Digest:          h.answerer.Digest(),
			Terms:           terms,
			FileMatches:     opts.FileMatches,
			SentenceMatches: opts.SentenceMatches,
		}
		result, cacheHit, err = h.cache.GetOrCompute(ctx, key, func() (*executor.Result, error) {
			return h.answerer.Answer(ctx, query)
		})
		if err == nil && result.Query != query {
			// Same terms, different wording: report what this caller asked.
			copied := *result
			copied.Query = query
			result = &copied
		}
	} else {
		result, err = h.answerer.Answer(ctx, query)
	}

	latencyMs := time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
		}
		log.Error("answer failed", "query", query, "error", err)
		h.track(r, analytics.QueryEvent{Type: analytics.EventFailed, Query: query, Terms: terms, LatencyMs: latencyMs})
		h.writeError(w, apperrors.HTTPStatusCode(err), "answer failed")
		return
	}

	log.Info("answer served",
		"query", query,
		"returned", len(result.Sentences),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	h.track(r, analytics.QueryEvent{
		Type:       eventType(result),
		Query:      query,
		Terms:      result.Terms,
		Files:      ranker.DocIDs(result.Files),
		Sentences:  len(result.Sentences),
		Candidates: result.Candidates,
		LatencyMs:  latencyMs,
		CacheHit:   cacheHit,
	})

	h.writeJSON(w, http.StatusOK, result)
}

// Corpus handles GET /api/v1/corpus.
func (h *Handler) Corpus(w http.ResponseWriter, r *http.Request) {
	opts := h.answerer.Options()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"digest":           h.answerer.Digest(),
		"documents":        h.answerer.Documents(),
		"ids":              h.answerer.DocumentIDs(),
		"file_matches":     opts.FileMatches,
		"sentence_matches": opts.SentenceMatches,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"circuit":  h.cache.CircuitState().String(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) track(r *http.Request, event analytics.QueryEvent) {
	event.CorpusDigest = h.answerer.Digest()
	event.Timestamp = time.Now().UTC()
	event.RequestID = middleware.GetRequestID(r)
	if h.aggregator != nil {
		h.aggregator.Record(event)
	}
	if h.collector != nil {
		h.collector.Track(event)
	}
}

func eventType(result *executor.Result) analytics.EventType {
	switch {
	case len(result.Terms) == 0:
		return analytics.EventNoTerms
	case len(result.Sentences) == 0:
		return analytics.EventNoSentences
	default:
		return analytics.EventAnswered
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
