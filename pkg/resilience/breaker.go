// Package resilience keeps the answer service responsive when its optional
// backends misbehave. A Breaker stops calling a failing Redis cache for a
// while, and Retry waits out a corpus database that is still starting.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by Breaker.Do while the circuit rejects calls.
var ErrOpen = errors.New("circuit open")

// State is the phase of a Breaker. The numeric values are exported as the
// cache circuit gauge.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type BreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the circuit.
	Threshold int
	// Cooldown is how long an open circuit rejects calls before it lets a
	// single trial call through.
	Cooldown time.Duration
	// IsFailure decides which errors count. Nil counts every error, so a
	// cache miss sentinel must be excluded here.
	IsFailure func(error) bool
	// OnStateChange runs after each transition, without the lock held.
	OnStateChange func(from, to State)
}

// Breaker is a consecutive-failure circuit breaker.
type Breaker struct {
	name   string
	cfg    BreakerConfig
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// NewBreaker returns a closed Breaker. Zero Threshold and Cooldown default
// to 5 failures and 30 seconds.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{
		name:   name,
		cfg:    cfg,
		now:    time.Now,
		logger: slog.Default().With("component", "circuit-breaker", "name", name),
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do runs fn unless the circuit is open and records its outcome.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// Reset closes the circuit and forgets past failures.
func (b *Breaker) Reset() {
	notify := func() {}
	b.mu.Lock()
	defer func() {
		b.mu.Unlock()
		notify()
	}()
	b.failures = 0
	b.trial = false
	notify = b.moveTo(Closed)
}

func (b *Breaker) admit() error {
	notify := func() {}
	b.mu.Lock()
	defer func() {
		b.mu.Unlock()
		notify()
	}()

	switch b.state {
	case Open:
		wait := b.cfg.Cooldown - b.now().Sub(b.openedAt)
		if wait > 0 {
			return fmt.Errorf("%w: %s, next trial in %s", ErrOpen, b.name, wait.Round(time.Millisecond))
		}
		notify = b.moveTo(HalfOpen)
		b.trial = true
	case HalfOpen:
		if b.trial {
			return fmt.Errorf("%w: %s, trial call in flight", ErrOpen, b.name)
		}
		b.trial = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	failed := err != nil && (b.cfg.IsFailure == nil || b.cfg.IsFailure(err))

	notify := func() {}
	b.mu.Lock()
	defer func() {
		b.mu.Unlock()
		notify()
	}()

	switch b.state {
	case Closed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.Threshold {
			b.openedAt = b.now()
			notify = b.moveTo(Open)
			b.logger.Warn("circuit opened", "consecutive_failures", b.failures, "error", err)
		}
	case HalfOpen:
		b.trial = false
		if failed {
			b.openedAt = b.now()
			notify = b.moveTo(Open)
			b.logger.Warn("trial call failed, circuit re-opened", "error", err)
			return
		}
		b.failures = 0
		notify = b.moveTo(Closed)
		b.logger.Info("circuit closed after successful trial")
	}
	// A call admitted before the circuit opened finishes in Open; its result
	// is ignored.
}

// moveTo must be called with b.mu held. The returned func reports the
// transition and must be called after unlocking.
func (b *Breaker) moveTo(to State) func() {
	from := b.state
	if from == to {
		return func() {}
	}
	b.state = to
	return func() {
		if b.cfg.OnStateChange != nil {
			b.cfg.OnStateChange(from, to)
		}
	}
}
