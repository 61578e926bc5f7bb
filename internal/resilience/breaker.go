// Package resilience hardens the assistant's network collaborators: the
// grammar-correction service and the embedding backends. It provides a
// three-state circuit breaker, fixed-backoff retry, and a generic failover
// chain that routes around an unhealthy primary provider.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] while the breaker is open and its
// cool-off period has not elapsed.
var ErrOpen = errors.New("resilience: breaker open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// BreakerConfig tunes a [Breaker]. Zero fields take defaults.
type BreakerConfig struct {
	// Name labels the breaker in log output.
	Name string

	// Trip is the consecutive-failure count that opens the breaker.
	// Default: 5.
	Trip int

	// CoolOff is how long the breaker stays open before letting probe
	// calls through. Default: 30s.
	CoolOff time.Duration

	// Probes is how many half-open calls must succeed before the breaker
	// closes again. Any half-open failure re-opens it. Default: 3.
	Probes int
}

// Breaker is a three-state circuit breaker: closed while the collaborator
// is healthy, open after Trip consecutive failures, half-open after the
// cool-off to test whether the collaborator recovered.
type Breaker struct {
	name    string
	trip    int
	coolOff time.Duration
	probes  int

	// now is swapped for a fake in tests.
	now func() time.Time

	mu           sync.Mutex
	state        breakerState
	failures     int
	openedAt     time.Time
	probeStarted int
	probePassed  int
}

// NewBreaker builds a Breaker from cfg.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Trip <= 0 {
		cfg.Trip = 5
	}
	if cfg.CoolOff <= 0 {
		cfg.CoolOff = 30 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 3
	}
	return &Breaker{
		name:    cfg.Name,
		trip:    cfg.Trip,
		coolOff: cfg.CoolOff,
		probes:  cfg.Probes,
		now:     time.Now,
	}
}

// Do runs fn unless the breaker is open, in which case it returns [ErrOpen]
// without calling fn. In the half-open state only Probes calls are admitted
// before the breaker decides.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	switch b.state {
	case stateOpen:
		if b.now().Sub(b.openedAt) < b.coolOff {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = stateHalfOpen
		b.probeStarted = 0
		b.probePassed = 0
		slog.Info("breaker half-open, probing", "breaker", b.name)

	case stateHalfOpen:
		if b.probeStarted >= b.probes {
			b.mu.Unlock()
			return ErrOpen
		}
	}

	probing := b.state == stateHalfOpen
	if probing {
		b.probeStarted++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure(probing)
	} else {
		b.onSuccess(probing)
	}
	return err
}

// onFailure must be called with b.mu held.
func (b *Breaker) onFailure(probing bool) {
	if probing {
		b.state = stateOpen
		b.openedAt = b.now()
		b.failures = b.trip
		slog.Warn("breaker re-opened, probe failed", "breaker", b.name)
		return
	}
	b.failures++
	if b.failures >= b.trip {
		b.state = stateOpen
		b.openedAt = b.now()
		slog.Warn("breaker opened", "breaker", b.name, "failures", b.failures)
	}
}

// onSuccess must be called with b.mu held.
func (b *Breaker) onSuccess(probing bool) {
	if probing {
		b.probePassed++
		if b.probePassed >= b.probes {
			b.state = stateClosed
			b.failures = 0
			slog.Info("breaker closed, collaborator recovered", "breaker", b.name)
		}
		return
	}
	b.failures = 0
}

// Healthy reports whether the breaker would currently admit a call.
func (b *Breaker) Healthy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateOpen {
		return b.now().Sub(b.openedAt) >= b.coolOff
	}
	return true
}
