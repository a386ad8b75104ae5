package analytics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	maxLatencySamples = 10000
	defaultTop        = 10
	maxTop            = 100
)

type AggregatedStats struct {
	TotalQueries      int64        `json:"total_queries"`
	Answered          int64        `json:"answered"`
	Unanswered        int64        `json:"unanswered"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	UnansweredQueries []QueryCount `json:"unanswered_queries"`
	TopFiles          []QueryCount `json:"top_files"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps running totals over the query events seen by this
// process.
type Aggregator struct {
	mu                sync.RWMutex
	totalQueries      atomic.Int64
	answered          atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	latencies         []int64
	queryCounts       map[string]int64
	unansweredQueries map[string]int64
	fileCounts        map[string]int64
	startTime         time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		unansweredQueries: make(map[string]int64),
		fileCounts:        make(map[string]int64),
		startTime:         time.Now(),
	}
}

func (a *Aggregator) Record(event QueryEvent) {
	a.totalQueries.Add(1)
	if !event.Unanswered() {
		a.answered.Add(1)
	}
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.latencies) == maxLatencySamples {
		a.latencies = a.latencies[1:]
	}
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if event.Unanswered() {
		a.unansweredQueries[event.Query]++
	}
	for _, f := range event.Files {
		a.fileCounts[f]++
	}
}

// Stats summarises every recorded event with the ten most frequent entries
// in each top list.
func (a *Aggregator) Stats() AggregatedStats {
	return a.StatsTop(defaultTop)
}

// StatsTop is Stats with n entries per top list.
func (a *Aggregator) StatsTop(n int) AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	total := a.totalQueries.Load()
	answered := a.answered.Load()
	stats := AggregatedStats{
		TotalQueries: total,
		Answered:     answered,
		Unanswered:   total - answered,
		CacheHits:    a.cacheHits.Load(),
		CacheMisses:  a.cacheMisses.Load(),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, n)
	stats.UnansweredQueries = topN(a.unansweredQueries, n)
	stats.TopFiles = topN(a.fileCounts, n)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(total) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, breaking ties by key so output is stable.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
