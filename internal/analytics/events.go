package analytics

import "time"

type EventType string

const (
	EventAnswered    EventType = "answered"
	EventNoTerms     EventType = "no_terms"
	EventNoSentences EventType = "no_sentences"
	EventFailed      EventType = "failed"
)

// QueryEvent describes one answered (or unanswered) question.
type QueryEvent struct {
	Type         EventType `json:"type"`
	Query        string    `json:"query"`
	Terms        []string  `json:"terms"`
	Files        []string  `json:"files"`
	Sentences    int       `json:"sentences"`
	Candidates   int       `json:"candidates"`
	LatencyMs    int64     `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	CorpusDigest string    `json:"corpus_digest"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
}

// Unanswered reports whether the question produced no sentence.
func (e QueryEvent) Unanswered() bool {
	return e.Type != EventAnswered
}
