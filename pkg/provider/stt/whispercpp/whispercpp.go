// Package whispercpp implements the stt.Transcriber interface over the
// whisper.cpp Go bindings with a locally loaded GGML model.
package whispercpp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/auriga-voice/auriga/pkg/provider/stt"
)

var _ stt.Transcriber = (*Transcriber)(nil)

// Transcriber runs inference on a whisper.cpp model. The model handle is
// not safe for concurrent inference, so all calls are serialized through a
// mutex; utterances queue rather than interleave.
type Transcriber struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
}

// Option is a functional option for [New].
type Option func(*Transcriber)

// WithLanguage sets the transcription language hint (e.g., "fr").
func WithLanguage(lang string) Option {
	return func(t *Transcriber) { t.language = lang }
}

// New loads the GGML model at modelPath. The caller must Close the returned
// Transcriber.
func New(modelPath string, opts ...Option) (*Transcriber, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whispercpp: load model %q: %w", modelPath, err)
	}
	t := &Transcriber{model: model}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Transcribe implements stt.Transcriber.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("whispercpp: transcribe: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whispercpp: create context: %w", err)
	}
	if t.language != "" {
		if err := wctx.SetLanguage(t.language); err != nil {
			return "", fmt.Errorf("whispercpp: set language %q: %w", t.language, err)
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whispercpp: process %d samples: %w", len(samples), err)
	}

	var out strings.Builder
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whispercpp: next segment: %w", err)
		}

		tokens := make([]string, 0, len(seg.Tokens))
		for _, tok := range seg.Tokens {
			tokens = append(tokens, tok.Text)
		}
		out.WriteString(assembleSegment(tokens))
		out.WriteByte(' ')
	}
	return strings.TrimSpace(out.String()), nil
}

// Close releases the model.
func (t *Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.model == nil {
		return nil
	}
	err := t.model.Close()
	t.model = nil
	return err
}

// assembleSegment joins decoder tokens into segment text. Tokens are
// space-separated except when a token opens with ASCII punctuation (it
// attaches to the previous word) or with "[" (a decoder sentinel such as
// [_BEG_], stripped later by the cleanup pass).
func assembleSegment(tokens []string) string {
	var out strings.Builder
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if out.Len() > 0 && !startsWithASCIIPunct(tok) && !strings.HasPrefix(tok, "[") {
			out.WriteByte(' ')
		}
		out.WriteString(tok)
	}
	return strings.TrimSpace(out.String())
}

func startsWithASCIIPunct(s string) bool {
	c := s[0]
	switch {
	case c >= '!' && c <= '/':
		return true
	case c >= ':' && c <= '@':
		return true
	case c >= '[' && c <= '`':
		return true
	case c >= '{' && c <= '~':
		return true
	}
	return false
}
