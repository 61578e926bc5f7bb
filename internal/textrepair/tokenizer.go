package textrepair

import "regexp"

// tokenPattern matches a maximal run of letters, optionally containing
// single embedded apostrophe-joined letter runs ("aujourd'hui" is one
// token; digits, punctuation, and symbols fall into the gaps). Compiled
// once; tokenization runs per utterance on the hot path.
var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Token is a half-open byte span [Start, End) into the source string plus
// its literal text. Tokens from one Tokenize call never overlap and appear
// in document order.
type Token struct {
	Start int
	End   int
	Text  string
}

// Tokenize splits text into letter-sequence tokens with their byte spans.
// It is a pure function of its input.
func Tokenize(text string) []Token {
	idxs := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, len(idxs))
	for i, span := range idxs {
		tokens[i] = Token{Start: span[0], End: span[1], Text: text[span[0]:span[1]]}
	}
	return tokens
}
