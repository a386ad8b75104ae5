// Package metrics defines the Prometheus collectors for the answering
// pipeline and the query service, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query outcomes recorded in QueriesTotal.
const (
	ResultAnswered    = "answered"
	ResultNoTerms     = "no_terms"
	ResultNoSentences = "no_sentences"
	ResultError       = "error"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	QueriesTotal         *prometheus.CounterVec
	StageDuration        *prometheus.HistogramVec
	AnswerLatency        *prometheus.HistogramVec
	SentenceCandidates   prometheus.Histogram
	CorpusDocuments      prometheus.Gauge
	CorpusTokens         prometheus.Gauge
	VocabularySize       prometheus.Gauge
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	CacheCircuitState    prometheus.Gauge
	EventsDroppedTotal   prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg means
// the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questions_queries_total",
				Help: "Total questions by outcome (answered, no_terms, no_sentences, error).",
			},
			[]string{"result"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "questions_stage_duration_seconds",
				Help:    "Duration of each answering stage in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"stage"},
		),
		AnswerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "questions_answer_latency_seconds",
				Help:    "End-to-end answer latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SentenceCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "questions_sentence_candidates",
				Help:    "Number of candidate sentences extracted per question.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
			},
		),
		CorpusDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "questions_corpus_documents",
				Help: "Number of documents in the loaded corpus.",
			},
		),
		CorpusTokens: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "questions_corpus_tokens",
				Help: "Total significant tokens across the loaded corpus.",
			},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "questions_vocabulary_size",
				Help: "Distinct terms in the document IDF table.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "questions_cache_hits_total",
				Help: "Total number of answer cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "questions_cache_misses_total",
				Help: "Total number of answer cache misses.",
			},
		),
		CacheCircuitState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "questions_cache_circuit_state",
				Help: "Answer cache circuit: 0 closed, 1 open, 2 half-open.",
			},
		),
		EventsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "questions_analytics_events_dropped_total",
				Help: "Analytics events dropped because the buffer was full.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.QueriesTotal,
		m.StageDuration,
		m.AnswerLatency,
		m.SentenceCandidates,
		m.CorpusDocuments,
		m.CorpusTokens,
		m.VocabularySize,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheCircuitState,
		m.EventsDroppedTotal,
	)

	return m
}

// Handler returns the scrape handler for g. A nil g means the default
// Prometheus gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
