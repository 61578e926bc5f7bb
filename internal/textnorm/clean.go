// Package textnorm strips speech-decoder sentinel tags and collapses
// whitespace in raw transcripts. It runs before grammar correction and
// text repair; neither of those stages may ever see a decoder marker.
package textnorm

import (
	"regexp"
	"strings"
)

// Patterns are compiled once at package init; cleanup runs on every
// utterance on the hot path.
var (
	// begMarker matches the decoder's begin-of-stream sentinel.
	begMarker = regexp.MustCompile(`\[_BEG_\]`)

	// timingMarker matches numbered timing sentinels such as [_TT_150].
	timingMarker = regexp.MustCompile(`\[_TT_\d+\]`)

	// spaceRun matches any run of whitespace, which is collapsed to a
	// single space.
	spaceRun = regexp.MustCompile(`\s+`)
)

// Clean removes decoder sentinel tags from raw, collapses all whitespace
// runs to single spaces, and trims the result.
func Clean(raw string) string {
	s := begMarker.ReplaceAllString(raw, "")
	s = timingMarker.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
