// Package cache stores answers in Redis, keyed by the corpus digest, the
// query terms and the match counts. Concurrent misses for the same key are
// collapsed into a single computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/questions/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/questions/pkg/resilience"
)

const keyPrefix = "answer:"

// Store is the key-value backend; *redis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Key identifies one cached answer.
type Key struct {
	Digest          string
	Terms           []string
	FileMatches     int
	SentenceMatches int
}

type AnswerCache struct {
	store   Store
	breaker *resilience.Breaker
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache over store. m may be nil. After repeated store errors
// the cache stops calling the store for a while and every lookup misses.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *AnswerCache {
	c := &AnswerCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "answer-cache"),
	}
	c.breaker = resilience.NewBreaker("answer-cache", resilience.BreakerConfig{
		Threshold: 5,
		Cooldown:  30 * time.Second,
		IsFailure: func(err error) bool { return !pkgredis.IsMiss(err) },
		OnStateChange: func(from, to resilience.State) {
			c.logger.Warn("cache circuit changed", "from", from, "to", to)
			if c.metrics != nil {
				c.metrics.CacheCircuitState.Set(float64(to))
			}
		},
	})
	return c
}

// CircuitState reports whether the cache is currently calling its store.
func (c *AnswerCache) CircuitState() resilience.State {
	return c.breaker.State()
}

func (c *AnswerCache) Get(ctx context.Context, key Key) (*executor.Result, bool) {
	k := buildKey(key)
	var data []byte
	err := c.breaker.Do(func() error {
		var err error
		data, err = c.store.Get(ctx, k)
		return err
	})
	if err != nil {
		if !pkgredis.IsMiss(err) {
			c.logger.Error("cache get failed", "key", k, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", k, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "key", k)
	return &result, true
}

func (c *AnswerCache) Set(ctx context.Context, key Key, result *executor.Result) {
	k := buildKey(key)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", k, "error", err)
		return
	}
	if err := c.breaker.Do(func() error {
		return c.store.Set(ctx, k, data, c.ttl)
	}); err != nil {
		c.logger.Error("cache set failed", "key", k, "error", err)
	}
}

// GetOrCompute returns the cached answer for key, or runs computeFn and
// caches its result. The boolean reports a cache hit.
func (c *AnswerCache) GetOrCompute(
	ctx context.Context,
	key Key,
	computeFn func() (*executor.Result, error),
) (*executor.Result, bool, error) {
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	k := buildKey(key)
	val, err, _ := c.group.Do(k, func() (any, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.Result), false, nil
}

// Invalidate removes every cached answer.
func (c *AnswerCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *AnswerCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *AnswerCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *AnswerCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// buildKey ignores term order: rankings depend only on the term set.
func buildKey(key Key) string {
	terms := slices.Clone(key.Terms)
	slices.Sort(terms)
	raw := fmt.Sprintf("%s|%s|files=%d|sentences=%d",
		key.Digest, strings.Join(terms, "\x00"), key.FileMatches, key.SentenceMatches)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
