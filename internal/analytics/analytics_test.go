package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/questions/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/metrics"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
	block  chan struct{}
}

func (p *fakePublisher) Publish(ctx context.Context, event kafka.Event) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) published() []kafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Event(nil), p.events...)
}

func TestCollectorPublishesOnClose(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 8, nil)
	c.Start(context.Background())

	c.Track(QueryEvent{Type: EventAnswered, Query: "who created python", CorpusDigest: "d1"})
	c.Track(QueryEvent{Type: EventNoTerms, Query: "the", CorpusDigest: "d1"})
	c.Close()

	got := pub.published()
	if len(got) != 2 {
		t.Fatalf("published %d events, want 2", len(got))
	}
	if got[0].Key != "d1" {
		t.Errorf("key = %q, want corpus digest", got[0].Key)
	}
	if ev, ok := got[1].Value.(QueryEvent); !ok || ev.Type != EventNoTerms {
		t.Errorf("second event = %+v", got[1].Value)
	}
}

func TestCollectorPublishErrorIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 4, nil)
	c.Start(context.Background())
	c.Track(QueryEvent{Query: "a"})
	c.Track(QueryEvent{Query: "b"})
	c.Close()
	if n := len(pub.published()); n != 2 {
		t.Errorf("attempted %d publishes, want 2", n)
	}
}

func TestCollectorDropsWhenFull(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	pub := &fakePublisher{block: make(chan struct{})}
	c := NewCollector(pub, 1, m)

	// Not started: the buffer holds one event and the rest are dropped.
	c.Track(QueryEvent{Query: "kept"})
	c.Track(QueryEvent{Query: "dropped"})
	c.Track(QueryEvent{Query: "dropped"})

	if got := testutil.ToFloat64(m.EventsDroppedTotal); got != 2 {
		t.Errorf("dropped = %v, want 2", got)
	}
	close(pub.block)
	c.Start(context.Background())
	c.Close()
	if n := len(pub.published()); n != 1 {
		t.Errorf("published %d, want 1", n)
	}
}

func TestAggregatorStats(t *testing.T) {
	a := NewAggregator()
	a.Record(QueryEvent{Type: EventAnswered, Query: "python", Files: []string{"python.txt"}, LatencyMs: 10})
	a.Record(QueryEvent{Type: EventAnswered, Query: "python", Files: []string{"python.txt"}, LatencyMs: 20, CacheHit: true})
	a.Record(QueryEvent{Type: EventNoTerms, Query: "the", LatencyMs: 30})

	s := a.Stats()
	if s.TotalQueries != 3 || s.Answered != 2 || s.Unanswered != 1 {
		t.Errorf("totals = %d/%d/%d", s.TotalQueries, s.Answered, s.Unanswered)
	}
	if s.CacheHits != 1 || s.CacheMisses != 2 {
		t.Errorf("cache = %d/%d", s.CacheHits, s.CacheMisses)
	}
	if s.AvgLatencyMs != 20 {
		t.Errorf("avg latency = %v, want 20", s.AvgLatencyMs)
	}
	if len(s.TopQueries) != 2 || s.TopQueries[0].Query != "python" || s.TopQueries[0].Count != 2 {
		t.Errorf("top queries = %+v", s.TopQueries)
	}
	if len(s.UnansweredQueries) != 1 || s.UnansweredQueries[0].Query != "the" {
		t.Errorf("unanswered = %+v", s.UnansweredQueries)
	}
	if len(s.TopFiles) != 1 || s.TopFiles[0].Count != 2 {
		t.Errorf("top files = %+v", s.TopFiles)
	}
}

func TestAggregatorEmpty(t *testing.T) {
	s := NewAggregator().Stats()
	if s.TotalQueries != 0 || s.P99LatencyMs != 0 || len(s.TopQueries) != 0 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestHandlerStats(t *testing.T) {
	a := NewAggregator()
	a.Record(QueryEvent{Type: EventAnswered, Query: "go", Timestamp: time.Now()})
	h := NewHandler(a)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var s AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.TotalQueries != 1 {
		t.Errorf("total = %d, want 1", s.TotalQueries)
	}
}

func TestHandlerStatsTop(t *testing.T) {
	a := NewAggregator()
	for _, q := range []string{"go", "go", "python", "rust"} {
		a.Record(QueryEvent{Type: EventAnswered, Query: q, Timestamp: time.Now()})
	}
	h := NewHandler(a)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics?top=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var s AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if len(s.TopQueries) != 1 || s.TopQueries[0].Query != "go" || s.TopQueries[0].Count != 2 {
		t.Errorf("top queries = %+v, want only go x2", s.TopQueries)
	}

	for _, bad := range []string{"0", "101", "ten"} {
		rec := httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics?top="+bad, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("top=%s: status = %d, want 400", bad, rec.Code)
		}
	}
}
