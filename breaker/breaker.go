// Package breaker provides a minimal, thread-safe circuit breaker used to
// stop hammering a durable store that keeps failing.
//
// States:
//   - Closed: calls flow normally; consecutive failures are counted.
//   - Open: calls are rejected with [ErrOpen]; after OpenTimeout the breaker
//     moves to HalfOpen.
//   - HalfOpen: probe calls are let through; HalfOpenMaxSuccess consecutive
//     successes close the breaker, any failure reopens it.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] while the breaker rejects calls.
var ErrOpen = errors.New("breaker: circuit open")

// State represents the current circuit breaker state.
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
	return "unknown"
}

// Config holds the circuit breaker parameters.
type Config struct {
	// FailureThreshold is the number of consecutive failures in Closed state
	// before the breaker trips to Open.
	FailureThreshold int

	// OpenTimeout is how long the breaker stays Open before transitioning
	// to HalfOpen.
	OpenTimeout time.Duration

	// HalfOpenMaxSuccess is the number of consecutive successes required in
	// HalfOpen state to close the breaker again.
	HalfOpenMaxSuccess int
}

// DefaultConfig trips after five consecutive failures and probes again
// after thirty seconds.
func DefaultConfig() Config {
	return Config{FailureThreshold: 5, OpenTimeout: 30 * time.Second, HalfOpenMaxSuccess: 1}
}

// Option configures a Breaker.
type Option func(*Breaker)

// OnStateChange registers fn to be called after every state transition.
// fn runs outside the breaker's lock.
func OnStateChange(fn func(from, to State)) Option {
	return func(b *Breaker) { b.onChange = fn }
}

// Breaker is a minimal circuit breaker. All methods are safe for concurrent use.
type Breaker struct {
	mu sync.Mutex

	cfg Config

	state     State
	failures  int // consecutive failures in Closed
	successes int // consecutive successes in HalfOpen
	openedAt  time.Time
	nowFunc   func() time.Time // for testing; defaults to time.Now
	onChange  func(from, to State)
}

// New creates a Breaker with the given configuration. Non-positive fields
// fall back to [DefaultConfig].
func New(cfg Config, opts ...Option) *Breaker {
	def := DefaultConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.HalfOpenMaxSuccess <= 0 {
		cfg.HalfOpenMaxSuccess = def.HalfOpenMaxSuccess
	}
	b := &Breaker{
		cfg:     cfg,
		state:   Closed,
		nowFunc: time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// update runs fn under the lock and reports a state change afterwards.
func (b *Breaker) update(fn func()) {
	b.mu.Lock()
	from := b.state
	fn()
	to := b.state
	b.mu.Unlock()
	if from != to && b.onChange != nil {
		b.onChange(from, to)
	}
}

// State returns the current state of the breaker. In Open state it may
// auto-transition to HalfOpen if the timeout has elapsed.
func (b *Breaker) State() State {
	var s State
	b.update(func() {
		b.checkOpenTimeout()
		s = b.state
	})
	return s
}

// Allow reports whether a call may go through.
func (b *Breaker) Allow() bool {
	var ok bool
	b.update(func() {
		b.checkOpenTimeout()
		switch b.state {
		case Closed:
			ok = true
		case HalfOpen:
			ok = b.successes < b.cfg.HalfOpenMaxSuccess
		}
	})
	return ok
}

// Success records a successful call.
func (b *Breaker) Success() {
	b.update(func() {
		switch b.state {
		case Closed:
			b.failures = 0
		case HalfOpen:
			b.successes++
			if b.successes >= b.cfg.HalfOpenMaxSuccess {
				b.state = Closed
				b.failures = 0
				b.successes = 0
			}
		}
	})
}

// Failure records a failed call.
func (b *Breaker) Failure() {
	b.update(func() {
		switch b.state {
		case Closed:
			b.failures++
			if b.failures >= b.cfg.FailureThreshold {
				b.toOpen()
			}
		case HalfOpen:
			b.toOpen()
		}
	})
}

// Do runs fn if the breaker allows it and records the outcome. It returns
// [ErrOpen] without calling fn while the breaker is open.
func (b *Breaker) Do(fn func() error) error {
	if !b.Allow() {
		return ErrOpen
	}
	if err := fn(); err != nil {
		b.Failure()
		return err
	}
	b.Success()
	return nil
}

// checkOpenTimeout transitions from Open to HalfOpen when the timeout has
// elapsed. Must be called with b.mu held.
func (b *Breaker) checkOpenTimeout() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.state = HalfOpen
		b.successes = 0
	}
}

func (b *Breaker) toOpen() {
	b.state = Open
	b.openedAt = b.now()
	b.successes = 0
}

func (b *Breaker) now() time.Time {
	if b.nowFunc != nil {
		return b.nowFunc()
	}
	return time.Now()
}
