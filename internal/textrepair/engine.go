// Package textrepair recombines word fragments in speech-to-text output.
//
// Whisper-style decoders frequently split a single spoken word into several
// short tokens ("au jour d hui" for "aujourd'hui"). The repair engine scans
// the cleaned utterance left to right and, at each position, asks whether a
// window of adjacent tokens should be merged back into one word. The
// decision combines three kinds of evidence sharing one set of primitives:
// dictionary membership (exact automaton hit or nearest-neighbour edit
// distance, internal/dict), and embedding plausibility (internal/semantic).
//
// The scan is greedy and longest-first with no backtracking: a correct
// three-fragment reconstruction must win before any two-fragment sub-merge
// is considered, and once a window is accepted its tokens are never
// revisited. An input where accepting a shorter merge at position i would
// enable a better merge at i+1 is knowingly not handled.
package textrepair

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/auriga-voice/auriga/internal/dict"
	"github.com/auriga-voice/auriga/internal/observe"
	"github.com/auriga-voice/auriga/internal/semantic"
)

const (
	// maxCandidateLen is the rune-length cap of the candidate sanity
	// filter; anything longer is never a single word worth merging into.
	maxCandidateLen = 20

	// fuzzyDistance is the edit-distance bound for dictionary membership
	// of the concatenated candidate form.
	fuzzyDistance = 1

	// shortPairMaxLen is the rune length below which a 2-token merge is
	// handled by the short-pair regime instead of the threshold regime.
	shortPairMaxLen = 10

	// shortPairPlausibilityFloor is the plausibility below which a short
	// pair whose spaced form is also a dictionary phrase keeps its spaced
	// reading ("bon jour" stays two words).
	shortPairPlausibilityFloor = 0.1
)

// Engine evaluates merge windows over tokenized utterances. Safe for
// concurrent use: the dictionary index is immutable and the semantic
// oracle serializes internally.
type Engine struct {
	dicts   dict.Index
	oracle  *semantic.Oracle
	metrics *observe.Metrics
}

// EngineOption is a functional option for [NewEngine].
type EngineOption func(*Engine)

// WithMetrics records merge decisions on the given instruments.
func WithMetrics(m *observe.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine builds an Engine over the loaded dictionaries and the semantic
// oracle.
func NewEngine(dicts dict.Index, oracle *semantic.Oracle, opts ...EngineOption) *Engine {
	e := &Engine{dicts: dicts, oracle: oracle}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide evaluates merge windows starting at tokens[start], trying window
// sizes from maxMerge down to 2 (longest merge preferred). It returns the
// replacement word (the concatenated form in its original casing) and the
// number of tokens consumed, or ok=false when no window should merge.
func (e *Engine) Decide(ctx context.Context, text string, tokens []Token, start, maxMerge int) (merged string, consumed int, ok bool) {
	for k := maxMerge; k >= 2; k-- {
		if start+k > len(tokens) {
			continue
		}
		if !adjacent(text, tokens, start, k) {
			continue
		}

		window := tokens[start : start+k]
		concat, spaced := joinWindow(window)
		concatNorm := dict.Normalize(concat)
		spacedNorm := dict.Normalize(spaced)

		if !reasonableWord(concatNorm) {
			continue
		}

		inDict, spacedInDict := e.dicts.Membership(concatNorm, spacedNorm, fuzzyDistance)
		if !inDict {
			slog.Debug("textrepair: candidate not in any dictionary", "candidate", concatNorm)
			continue
		}

		approved := e.approve(ctx, concatNorm, spacedInDict, k)
		if e.metrics != nil {
			e.metrics.RecordMerge(ctx, approved)
		}
		if approved {
			return concat, k, true
		}
	}
	return "", 0, false
}

// approve applies the two decision regimes to a candidate already known to
// be in-dictionary.
func (e *Engine) approve(ctx context.Context, word string, spacedInDict bool, k int) bool {
	// Short-pair regime: two short fragments whose spaced form is itself a
	// valid phrase are only merged when the merged word carries at least
	// minimal embedding plausibility on its own.
	if k == 2 && utf8.RuneCountInString(word) < shortPairMaxLen {
		plaus := e.plausibility(ctx, word)
		if spacedInDict && plaus < shortPairPlausibilityFloor {
			slog.Info("textrepair: keeping spaced reading of short pair",
				"candidate", word, "plausibility", plaus)
			return false
		}
		slog.Debug("textrepair: merging short pair", "candidate", word, "plausibility", plaus)
		return true
	}

	// General regime: when only the merged form is a real word, merge
	// unconditionally; when both readings are plausible, require a
	// confidently high score before overriding the spaced one.
	score := e.Score(ctx, word, k)
	threshold := mergeThreshold(k)
	if !spacedInDict || score >= threshold {
		slog.Debug("textrepair: merging", "candidate", word, "score", score, "threshold", threshold)
		return true
	}
	slog.Debug("textrepair: spaced form exists and score below threshold",
		"candidate", word, "score", score, "threshold", threshold)
	return false
}

// Score computes the merge score for word when reconstructed from k
// tokens, in [0, 1]. Zero when the word length falls outside [3, 20].
// Longer merges and longer resulting words are intrinsically more likely
// to be genuine reconstructions; the embedding term is weighted lightly so
// it nudges rather than dominates.
func (e *Engine) Score(ctx context.Context, word string, k int) float32 {
	length := utf8.RuneCountInString(word)
	if length < 3 || length > maxCandidateLen {
		return 0
	}

	var base float32
	switch k {
	case 2:
		base = 0.50
	case 3:
		base = 0.55
	default:
		base = 0.60
	}

	var lengthPenalty float32
	if length < 5 {
		lengthPenalty = -0.05
	}

	total := base + lengthPenalty + 0.10*e.plausibility(ctx, word)
	if total < 0 {
		return 0
	}
	if total > 1 {
		return 1
	}
	return total
}

// plausibility queries the semantic oracle, degrading to 0 on failure so a
// broken embedding backend never aborts a repair pass.
func (e *Engine) plausibility(ctx context.Context, word string) float32 {
	p, err := e.oracle.Plausibility(ctx, word)
	if err != nil {
		slog.Warn("textrepair: plausibility probe failed, scoring 0", "word", word, "error", err)
		return 0
	}
	return p
}

// mergeThreshold returns the general-regime score threshold for a k-token
// merge.
func mergeThreshold(k int) float32 {
	switch k {
	case 2:
		return 0.70
	case 3:
		return 0.75
	default:
		return 0.80
	}
}

// adjacent reports whether the k tokens starting at start are separated by
// whitespace only. A merge must never jump punctuation or digits.
func adjacent(text string, tokens []Token, start, k int) bool {
	for j := start; j < start+k-1; j++ {
		gap := text[tokens[j].End:tokens[j+1].Start]
		for _, r := range gap {
			if !unicode.IsSpace(r) {
				return false
			}
		}
	}
	return true
}

// joinWindow builds the concatenated and space-joined candidate forms from
// a token window, in original casing.
func joinWindow(window []Token) (concat, spaced string) {
	parts := make([]string, len(window))
	for i, t := range window {
		parts[i] = t.Text
	}
	return strings.Join(parts, ""), strings.Join(parts, " ")
}

// reasonableWord is the character-class sanity filter applied before any
// dictionary or embedding lookup: at most 20 runes, letters and
// apostrophes only.
func reasonableWord(word string) bool {
	if word == "" || utf8.RuneCountInString(word) > maxCandidateLen {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '\'' && r != '’' {
			return false
		}
	}
	return true
}
