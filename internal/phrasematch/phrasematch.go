// Package phrasematch selects the best-matching phrase for an utterance by
// sentence-embedding similarity. It backs both wake-word detection and
// command-trigger resolution: the candidate sets differ, the selection rule
// does not.
package phrasematch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/auriga-voice/auriga/internal/semantic"
)

// DefaultThreshold is the cosine-similarity bar a candidate must strictly
// exceed to be considered a match at all.
const DefaultThreshold = 0.75

// Match is a selected candidate phrase and its similarity to the utterance.
type Match struct {
	Phrase string
	Score  float32
}

// Matcher compares utterances against fixed candidate phrase sets. Safe for
// concurrent use; candidate embeddings are memoized by the oracle, so only
// the utterance itself costs an encode per call.
type Matcher struct {
	oracle    *semantic.Oracle
	threshold float32
}

// Option is a functional option for [New].
type Option func(*Matcher)

// WithThreshold overrides the similarity threshold. Scores equal to the
// threshold do not match; the comparison is strict.
func WithThreshold(threshold float32) Option {
	return func(m *Matcher) { m.threshold = threshold }
}

// New constructs a Matcher over the semantic oracle.
func New(oracle *semantic.Oracle, opts ...Option) *Matcher {
	m := &Matcher{oracle: oracle, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Warm precomputes the embeddings of a candidate set so the first utterance
// does not pay one encode per candidate.
func (m *Matcher) Warm(ctx context.Context, candidates []string) error {
	if err := m.oracle.Warm(ctx, candidates); err != nil {
		return fmt.Errorf("phrasematch: warm candidates: %w", err)
	}
	return nil
}

// BestMatch returns the candidate most similar to utterance, or nil when no
// candidate strictly exceeds the threshold. Candidates are scanned in order
// and a later candidate replaces the current best only with a strictly
// higher score, so ties keep the earliest candidate.
func (m *Matcher) BestMatch(ctx context.Context, utterance string, candidates []string) (*Match, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	utterVec, err := m.oracle.Encode(ctx, utterance)
	if err != nil {
		return nil, fmt.Errorf("phrasematch: encode utterance: %w", err)
	}

	var best *Match
	for _, candidate := range candidates {
		candVec, err := m.oracle.Encode(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("phrasematch: encode candidate %q: %w", candidate, err)
		}
		score := semantic.Cosine(utterVec, candVec)
		slog.Debug("phrasematch: compared", "utterance", utterance, "candidate", candidate, "score", score)

		if score > m.threshold && (best == nil || score > best.Score) {
			best = &Match{Phrase: candidate, Score: score}
		}
	}
	return best, nil
}
