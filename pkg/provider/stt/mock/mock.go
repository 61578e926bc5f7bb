// Package mock provides a test double for the stt.Transcriber interface.
package mock

import (
	"context"
	"sync"

	"github.com/auriga-voice/auriga/pkg/provider/stt"
)

var _ stt.Transcriber = (*Transcriber)(nil)

// Transcriber is a mock implementation of stt.Transcriber. The zero value
// is usable; all fields are optional.
type Transcriber struct {
	mu sync.Mutex

	// TranscribeFunc, when set, computes the result for each call. It
	// takes precedence over Results.
	TranscribeFunc func(samples []float32) (string, error)

	// Results are returned in order by successive Transcribe calls when
	// TranscribeFunc is nil. Calls past the end return "".
	Results []string

	// TranscribeErr, if non-nil, is returned from every Transcribe call.
	TranscribeErr error

	// Calls counts Transcribe invocations.
	Calls int

	// Closed reports whether Close was called.
	Closed bool
}

// Transcribe implements stt.Transcriber.
func (t *Transcriber) Transcribe(_ context.Context, samples []float32) (string, error) {
	t.mu.Lock()
	n := t.Calls
	t.Calls++
	t.mu.Unlock()

	if t.TranscribeErr != nil {
		return "", t.TranscribeErr
	}
	if t.TranscribeFunc != nil {
		return t.TranscribeFunc(samples)
	}
	if n < len(t.Results) {
		return t.Results[n], nil
	}
	return "", nil
}

// Close implements stt.Transcriber.
func (t *Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return nil
}
