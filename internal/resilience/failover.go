package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrExhausted is returned when every provider in a [Failover] chain failed
// or had an open breaker.
var ErrExhausted = errors.New("resilience: all providers failed")

type failoverEntry[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Failover chains a primary provider with ordered fallbacks, each guarded
// by its own circuit breaker. Used for the embedding backends: a local
// Ollama primary with a hosted fallback, so dictation repair keeps its
// plausibility signal when the local model is down.
type Failover[T any] struct {
	entries []failoverEntry[T]
	breaker BreakerConfig
}

// NewFailover builds a chain whose first entry is primary. breaker is the
// per-entry breaker template; its Name field is replaced per entry.
func NewFailover[T any](primaryName string, primary T, breaker BreakerConfig) *Failover[T] {
	f := &Failover[T]{breaker: breaker}
	f.Add(primaryName, primary)
	return f
}

// Add appends a fallback provider, tried after all earlier entries.
func (f *Failover[T]) Add(name string, value T) {
	cfg := f.breaker
	cfg.Name = name
	f.entries = append(f.entries, failoverEntry[T]{
		name:    name,
		value:   value,
		breaker: NewBreaker(cfg),
	})
}

// Do runs fn against each entry in order until one succeeds, skipping
// entries with open breakers. When every entry fails the last error is
// wrapped in [ErrExhausted].
func (f *Failover[T]) Do(fn func(T) error) error {
	var lastErr error
	for i := range f.entries {
		e := &f.entries[i]
		err := e.breaker.Do(func() error { return fn(e.value) })
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrOpen) {
			slog.Debug("failover: skipping provider, breaker open", "provider", e.name)
		} else {
			slog.Warn("failover: provider failed", "provider", e.name, "error", err)
		}
	}
	return fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}

// DoValue runs fn against each entry of f until one returns a value.
// Package-level because methods cannot introduce new type parameters.
func DoValue[T, R any](f *Failover[T], fn func(T) (R, error)) (R, error) {
	var out R
	err := f.Do(func(v T) error {
		var innerErr error
		out, innerErr = fn(v)
		return innerErr
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}
