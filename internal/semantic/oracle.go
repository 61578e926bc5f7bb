// Package semantic wraps an embeddings provider with the similarity
// primitives shared by text repair and phrase matching: memoized encoding,
// cosine similarity, and the word-plausibility probe.
//
// The underlying embedding engine is not assumed safe for concurrent
// inference, so all provider calls are funnelled through one mutex. The
// memo cache makes repeated encodings of fixed reference strings (trigger
// phrases, template sentences) free after the first call.
package semantic

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viterin/vek/vek32"

	"github.com/auriga-voice/auriga/internal/observe"
	"github.com/auriga-voice/auriga/pkg/provider/embeddings"
)

const (
	// defaultCacheSize bounds the encoding memo cache. Merge candidates
	// churn, but the fixed registries (templates, triggers, wake variants)
	// stay resident.
	defaultCacheSize = 4096

	// defaultReferenceWord is the known-good word substituted into the
	// plausibility templates alongside the candidate.
	defaultReferenceWord = "bonjour"
)

// defaultTemplates are the natural-language frames a candidate word is
// substituted into for the plausibility probe. A real word placed in a
// plain sentence embeds close to the reference word placed in the same
// sentence; decoder garbage does not.
var defaultTemplates = []string{
	"People often use the word %s.",
	"The %s is a common term in French.",
	"I really like this %s.",
	"He talks about %s with enthusiasm.",
}

// Oracle provides memoized, serialized access to an embeddings provider.
// Safe for concurrent use.
type Oracle struct {
	provider embeddings.Provider

	// mu serializes all calls into the provider, honouring the embedding
	// engine's concurrency contract.
	mu    sync.Mutex
	cache *lru.Cache[string, []float32]

	referenceWord string
	templates     []string
	metrics       *observe.Metrics
}

// Option is a functional option for [New].
type Option func(*Oracle)

// WithReferenceWord overrides the known-good word used by Plausibility.
func WithReferenceWord(word string) Option {
	return func(o *Oracle) { o.referenceWord = word }
}

// WithTemplates overrides the plausibility template sentences. Each
// template must contain exactly one %s placeholder. At least two templates
// are required for the probe to average anything meaningful.
func WithTemplates(templates []string) Option {
	return func(o *Oracle) { o.templates = templates }
}

// WithMetrics records encode latency on the given instruments.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Oracle) { o.metrics = m }
}

// New constructs an Oracle over provider.
func New(provider embeddings.Provider, opts ...Option) (*Oracle, error) {
	if provider == nil {
		return nil, fmt.Errorf("semantic: provider must not be nil")
	}
	cache, err := lru.New[string, []float32](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("semantic: create cache: %w", err)
	}
	o := &Oracle{
		provider:      provider,
		cache:         cache,
		referenceWord: defaultReferenceWord,
		templates:     defaultTemplates,
	}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.templates) < 2 {
		return nil, fmt.Errorf("semantic: at least 2 plausibility templates required, got %d", len(o.templates))
	}
	return o, nil
}

// Encode returns the embedding vector for text, consulting the memo cache
// first. Cache hits never touch the provider.
func (o *Oracle) Encode(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := o.cache.Get(text); ok {
		return vec, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	// Re-check under the lock: a concurrent caller may have filled it.
	if vec, ok := o.cache.Get(text); ok {
		return vec, nil
	}
	start := time.Now()
	vec, err := o.provider.Embed(ctx, text)
	if o.metrics != nil {
		o.metrics.EmbeddingDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("semantic: encode: %w", err)
	}
	o.cache.Add(text, vec)
	return vec, nil
}

// Warm precomputes and caches embeddings for texts in a single provider
// batch call, skipping entries already cached. Used at startup for the
// fixed registries (wake variants, command triggers, plausibility
// reference sentences) so the hot path never pays their first-encode cost.
func (o *Oracle) Warm(ctx context.Context, texts []string) error {
	missing := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := o.cache.Get(t); !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	vecs, err := o.provider.EmbedBatch(ctx, missing)
	if err != nil {
		return fmt.Errorf("semantic: warm %d texts: %w", len(missing), err)
	}
	for i, t := range missing {
		o.cache.Add(t, vecs[i])
	}
	return nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. Mismatched
// lengths or a zero-norm vector yield 0 rather than NaN.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na, nb := vek32.Norm(a), vek32.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return vek32.Dot(a, b) / (na * nb)
}

// Plausibility scores how word-like word is, in [0, 1], independent of
// dictionary membership.
//
// For each template, word and the reference word are substituted into the
// same sentence frame and both framings are embedded. The per-template
// score combines cosine similarity (weight 0.7) with a norm-ratio sanity
// term (weight 0.3): the candidate embedding's L2 norm divided by the
// reference's, clamped to [0, 2] and halved into [0, 1]. Template scores
// are clamped to [0, 1] and averaged.
func (o *Oracle) Plausibility(ctx context.Context, word string) (float32, error) {
	var total float32
	for _, tmpl := range o.templates {
		refSentence := fmt.Sprintf(tmpl, o.referenceWord)
		testSentence := fmt.Sprintf(tmpl, word)

		refVec, err := o.Encode(ctx, refSentence)
		if err != nil {
			return 0, fmt.Errorf("semantic: plausibility reference %q: %w", refSentence, err)
		}
		testVec, err := o.Encode(ctx, testSentence)
		if err != nil {
			return 0, fmt.Errorf("semantic: plausibility candidate %q: %w", word, err)
		}

		cos := Cosine(refVec, testVec)

		var normRatio float32
		if refNorm := vek32.Norm(refVec); refNorm > 0 {
			normRatio = clamp(vek32.Norm(testVec)/refNorm, 0, 2) / 2
		}

		total += clamp(cos*0.7+normRatio*0.3, 0, 1)
	}
	return clamp(total/float32(len(o.templates)), 0, 1), nil
}

// ValidateTemplates reports templates without exactly one %s placeholder.
// Config validation calls it before an Oracle is built so a bad
// plausibility_templates block fails at load time.
func ValidateTemplates(templates []string) error {
	for i, t := range templates {
		if strings.Count(t, "%s") != 1 {
			return fmt.Errorf("semantic: template %d (%q) must contain exactly one %%s placeholder", i, t)
		}
	}
	return nil
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
