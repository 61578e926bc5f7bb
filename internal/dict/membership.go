package dict

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// minFuzzyRunes is the shortest candidate eligible for fuzzy membership.
// One edit on a two- or three-rune string reaches a large slice of the
// lexicon ("ony" is within distance 1 of "on"), so tiny candidates only
// count via exact membership.
const minFuzzyRunes = 4

// ContainsExact reports whether word matches a complete dictionary entry.
// A containment hit inside a longer entry, or a hit that does not start at
// the beginning of word, does not count: the automaton match must start at
// offset 0 and span the whole of word.
//
// word must already be normalized with [Normalize].
func (d *LanguageDictionary) ContainsExact(word string) bool {
	if word == "" {
		return false
	}
	for _, m := range d.trie.MatchString(word) {
		if m.Pos() == 0 && len(m.MatchString()) == len(word) {
			return true
		}
	}
	return false
}

// NearestDistance returns the minimum Levenshtein distance between query
// and any entry in the word list. query must already be normalized with
// [Normalize]. Returns a large positive value for an empty dictionary.
func (d *LanguageDictionary) NearestDistance(query string) int {
	best := int(^uint(0) >> 1)
	for _, w := range d.words {
		dist := matchr.Levenshtein(query, w)
		if dist < best {
			best = dist
			if best == 0 {
				break
			}
		}
	}
	return best
}

// IsSimilar reports whether any entry is within maxDistance edits of query.
// Unlike [LanguageDictionary.NearestDistance] it stops scanning as soon as
// a close-enough entry is found.
func (d *LanguageDictionary) IsSimilar(query string, maxDistance int) bool {
	for _, w := range d.words {
		if matchr.Levenshtein(query, w) <= maxDistance {
			return true
		}
	}
	return false
}

// Membership evaluates a merge candidate against every loaded language.
//
// concat is the concatenated candidate form and spaced its space-joined
// form; both must be normalized with [Normalize]. A candidate is "in
// dictionary" when ANY language accepts it, either exactly or within
// maxDistance edits; candidates shorter than [minFuzzyRunes] must match
// exactly. The spaced form only counts via exact membership — fuzzy
// evidence for a multi-word phrase would make almost any common word pair
// look like an entry.
func (idx Index) Membership(concat, spaced string, maxDistance int) (inDict, spacedInDict bool) {
	allowFuzzy := utf8.RuneCountInString(concat) >= minFuzzyRunes
	for _, d := range idx {
		if !inDict && (d.ContainsExact(concat) || (allowFuzzy && d.IsSimilar(concat, maxDistance))) {
			inDict = true
		}
		if !spacedInDict && d.ContainsExact(spaced) {
			spacedInDict = true
		}
		if inDict && spacedInDict {
			break
		}
	}
	return inDict, spacedInDict
}

// ContainsAny reports whether word is an exact entry in any loaded language.
func (idx Index) ContainsAny(word string) bool {
	for _, d := range idx {
		if d.ContainsExact(word) {
			return true
		}
	}
	return false
}
