package textrepair

import (
	"context"
	"strings"
)

// DefaultMaxMerge is the window size used by the session pipeline: up to
// four fragments can collapse into one word, enough for the worst splits
// seen in practice ("au jour d hui").
const DefaultMaxMerge = 4

// Repair reassembles text with fragment merges applied. It tokenizes once,
// then scans left to right with a cursor: at each position the merge
// engine is consulted; on approval the window's gap prefix plus the merged
// word is emitted and the cursor advances by the consumed count, otherwise
// the single token is copied verbatim and the cursor advances by one. Text
// between and around tokens (punctuation, digits, spacing) is preserved
// byte for byte.
func (e *Engine) Repair(ctx context.Context, text string, maxMerge int) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	lastEnd := 0
	i := 0
	for i < len(tokens) {
		if merged, consumed, ok := e.Decide(ctx, text, tokens, i, maxMerge); ok {
			out.WriteString(text[lastEnd:tokens[i].Start])
			out.WriteString(merged)
			lastEnd = tokens[i+consumed-1].End
			i += consumed
			continue
		}

		out.WriteString(text[lastEnd:tokens[i].Start])
		out.WriteString(tokens[i].Text)
		lastEnd = tokens[i].End
		i++
	}

	out.WriteString(text[lastEnd:])
	return out.String()
}
