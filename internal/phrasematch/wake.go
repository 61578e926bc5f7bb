package phrasematch

import (
	"context"
	"log/slog"
)

// WakeVariants are the spoken forms the wake word "aurora" comes back as
// from the transcriber, collected from real sessions. Matching against the
// whole set instead of the canonical word alone makes detection robust to
// the usual mishearings.
var WakeVariants = []string{
	"aurora",
	"auroha",
	"arora",
	"auroura",
	"uroha",
	"laura",
	"vox aurora",
	"vox oroha",
	"vox-oroha",
	"vox au rohe.",
	"vox-orore",
	"vox ouroho.",
}

// WakeDetector reports whether an utterance is an attempt to say the wake
// word.
type WakeDetector struct {
	matcher  *Matcher
	variants []string
}

// NewWakeDetector builds a detector over the standard variant set.
func NewWakeDetector(matcher *Matcher) *WakeDetector {
	return &WakeDetector{matcher: matcher, variants: WakeVariants}
}

// Warm precomputes the variant embeddings.
func (d *WakeDetector) Warm(ctx context.Context) error {
	return d.matcher.Warm(ctx, d.variants)
}

// Detect reports whether utterance matches any wake variant.
func (d *WakeDetector) Detect(ctx context.Context, utterance string) (bool, error) {
	match, err := d.matcher.BestMatch(ctx, utterance, d.variants)
	if err != nil {
		return false, err
	}
	if match == nil {
		return false, nil
	}
	slog.Info("wake word detected", "utterance", utterance, "variant", match.Phrase, "score", match.Score)
	return true, nil
}
