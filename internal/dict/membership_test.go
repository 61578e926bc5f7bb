package dict_test

import (
	"testing"

	"github.com/auriga-voice/auriga/internal/dict"
)

func frenchTestDict() *dict.LanguageDictionary {
	return dict.NewLanguageDictionary("fr", []string{
		"bonjour", "bon", "jour", "aujourd'hui", "autoroute", "merci",
	})
}

func TestContainsExact_FullEntryOnly(t *testing.T) {
	t.Parallel()

	d := frenchTestDict()

	if !d.ContainsExact("bonjour") {
		t.Error(`ContainsExact("bonjour") = false, want true`)
	}
	// "bonjours" contains the entry "bonjour" as a prefix and "jour" inside,
	// but is not itself an entry.
	if d.ContainsExact("bonjours") {
		t.Error(`ContainsExact("bonjours") = true, want false (containment is not membership)`)
	}
	if d.ContainsExact("") {
		t.Error(`ContainsExact("") = true, want false`)
	}
}

func TestNearestDistance(t *testing.T) {
	t.Parallel()

	d := frenchTestDict()

	cases := []struct {
		query string
		want  int
	}{
		{"bonjour", 0},
		{"bonjoor", 1},
		{"binjoor", 2},
	}
	for _, c := range cases {
		if got := d.NearestDistance(c.query); got != c.want {
			t.Errorf("NearestDistance(%q) = %d, want %d", c.query, got, c.want)
		}
	}
}

func TestIsSimilar(t *testing.T) {
	t.Parallel()

	d := frenchTestDict()

	if !d.IsSimilar("bonjoor", 1) {
		t.Error(`IsSimilar("bonjoor", 1) = false, want true`)
	}
	if d.IsSimilar("binjoor", 1) {
		t.Error(`IsSimilar("binjoor", 1) = true, want false (distance 2)`)
	}
}

func TestIndex_Membership(t *testing.T) {
	t.Parallel()

	idx := dict.Index{
		"fr": frenchTestDict(),
		"en": dict.NewLanguageDictionary("en", []string{"hello", "world", "bon jour"}),
	}

	// Both forms known: concatenated exactly in fr, spaced exactly in en.
	inDict, spacedInDict := idx.Membership("bonjour", "bon jour", 1)
	if !inDict || !spacedInDict {
		t.Errorf("Membership(bonjour, bon jour) = (%v, %v), want (true, true)", inDict, spacedInDict)
	}

	// Fuzzy acceptance of the concatenated form.
	inDict, spacedInDict = idx.Membership("bonjoor", "bon joor", 1)
	if !inDict {
		t.Error("Membership: fuzzy concatenated form within distance 1 not accepted")
	}
	if spacedInDict {
		t.Error("Membership: spaced form must only count via exact membership")
	}

	// Unknown in every language.
	inDict, _ = idx.Membership("zzqqy", "zz qqy", 1)
	if inDict {
		t.Error(`Membership("zzqqy") = true, want false`)
	}
}

func TestIndex_Membership_NoFuzzyForTinyCandidates(t *testing.T) {
	t.Parallel()

	idx := dict.Index{
		"fr": dict.NewLanguageDictionary("fr", []string{"on", "y", "va", "ange"}),
	}

	// "ony" is within distance 1 of "on", but three runes is below the
	// fuzzy floor: only an exact entry may accept it.
	inDict, _ := idx.Membership("ony", "on y", 1)
	if inDict {
		t.Error(`Membership("ony") = true, want false (tiny candidates need exact membership)`)
	}

	// Exact membership still works at any length.
	inDict, _ = idx.Membership("va", "v a", 1)
	if !inDict {
		t.Error(`Membership("va") = false, want true (exact entry)`)
	}

	// Four runes is fuzzy-eligible again.
	inDict, _ = idx.Membership("ance", "an ce", 1)
	if !inDict {
		t.Error(`Membership("ance") = false, want true (distance 1 from "ange")`)
	}
}

func TestIndex_ContainsAny(t *testing.T) {
	t.Parallel()

	idx := dict.Index{
		"fr": frenchTestDict(),
		"en": dict.NewLanguageDictionary("en", []string{"hello"}),
	}
	if !idx.ContainsAny("hello") {
		t.Error(`ContainsAny("hello") = false, want true`)
	}
	if idx.ContainsAny("hola") {
		t.Error(`ContainsAny("hola") = true, want false`)
	}
}
