package textrepair_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/auriga-voice/auriga/internal/dict"
	"github.com/auriga-voice/auriga/internal/semantic"
	"github.com/auriga-voice/auriga/internal/textrepair"
	"github.com/auriga-voice/auriga/pkg/provider/embeddings/mock"
)

// newEngine builds an Engine over a French test dictionary and a mock
// embedder. weakWords lists words whose plausibility probe must come out
// near zero; everything else scores near one.
func newEngine(t *testing.T, words []string, weakWords ...string) *textrepair.Engine {
	t.Helper()

	p := &mock.Provider{
		EmbedFunc: func(text string) ([]float32, error) {
			for _, w := range weakWords {
				if strings.Contains(text, w) {
					return []float32{0, 0.001}, nil
				}
			}
			return []float32{1, 0}, nil
		},
		DimensionsValue: 2,
	}
	// The reference word must not collide with candidates under test.
	oracle, err := semantic.New(p, semantic.WithReferenceWord("merci"))
	if err != nil {
		t.Fatalf("semantic.New: %v", err)
	}

	idx := dict.Index{"fr": dict.NewLanguageDictionary("fr", words)}
	return textrepair.NewEngine(idx, oracle)
}

func TestRepair_MergesFourFragments(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []string{"aujourdhui", "on", "y", "va"})

	got := e.Repair(context.Background(), "au jour d hui on y va", 4)
	want := "aujourdhui on y va"
	if got != want {
		t.Errorf("Repair = %q, want %q", got, want)
	}
}

func TestRepair_KeepsShortFillerWordsSplit(t *testing.T) {
	t.Parallel()

	// "ony" is within one edit of the entry "on", but a three-rune
	// candidate is too short for fuzzy membership: the filler words must
	// survive as separate tokens.
	e := newEngine(t, []string{"on", "y", "va"})

	text := "on y va"
	if got := e.Repair(context.Background(), text, 4); got != text {
		t.Errorf("Repair = %q, want unchanged %q", got, text)
	}
}

func TestDecide_PrefersLongestMerge(t *testing.T) {
	t.Parallel()

	// Both the 2-token and the 4-token reconstructions are dictionary
	// entries; the 4-token one must win.
	e := newEngine(t, []string{"aujourdhui", "aujour"})

	text := "au jour d hui"
	tokens := textrepair.Tokenize(text)
	merged, consumed, ok := e.Decide(context.Background(), text, tokens, 0, 4)
	if !ok {
		t.Fatal("Decide: ok = false, want merge")
	}
	if consumed != 4 || merged != "aujourdhui" {
		t.Errorf("Decide = (%q, %d), want (%q, 4)", merged, consumed, "aujourdhui")
	}
}

func TestDecide_ShortPairKeepsSpacedReading(t *testing.T) {
	t.Parallel()

	// Both "bonjour" and "bon jour" are dictionary-valid and the merged
	// form has near-zero plausibility: the spaced reading is judged the
	// intended one.
	e := newEngine(t, []string{"bonjour", "bon jour", "bon", "jour"}, "bonjour")

	text := "bon jour"
	tokens := textrepair.Tokenize(text)
	if _, _, ok := e.Decide(context.Background(), text, tokens, 0, 4); ok {
		t.Fatal("Decide: ok = true, want no merge for implausible short pair with valid spaced form")
	}

	if got := e.Repair(context.Background(), text, 4); got != text {
		t.Errorf("Repair = %q, want unchanged %q", got, text)
	}
}

func TestDecide_ShortPairMergesWhenPlausible(t *testing.T) {
	t.Parallel()

	// Same dictionary state, but the merged form is plausible.
	e := newEngine(t, []string{"bonjour", "bon jour", "bon", "jour"})

	text := "bon jour"
	tokens := textrepair.Tokenize(text)
	merged, consumed, ok := e.Decide(context.Background(), text, tokens, 0, 4)
	if !ok || merged != "bonjour" || consumed != 2 {
		t.Errorf("Decide = (%q, %d, %v), want (%q, 2, true)", merged, consumed, ok, "bonjour")
	}
}

func TestDecide_ExactMatchMonotonicity(t *testing.T) {
	t.Parallel()

	// The merged form is an exact entry, the spaced form is not, and the
	// embedding backend is down entirely: the merge must still happen.
	p := &mock.Provider{EmbedErr: errors.New("model offline")}
	oracle, err := semantic.New(p)
	if err != nil {
		t.Fatalf("semantic.New: %v", err)
	}
	idx := dict.Index{"fr": dict.NewLanguageDictionary("fr", []string{"autoroute"})}
	e := textrepair.NewEngine(idx, oracle)

	text := "auto route"
	tokens := textrepair.Tokenize(text)
	merged, consumed, ok := e.Decide(context.Background(), text, tokens, 0, 4)
	if !ok || merged != "autoroute" || consumed != 2 {
		t.Errorf("Decide = (%q, %d, %v), want (%q, 2, true)", merged, consumed, ok, "autoroute")
	}
}

func TestDecide_GeneralRegimeRequiresThreshold(t *testing.T) {
	t.Parallel()

	// An 11-rune pair falls into the general regime. Both forms are valid
	// entries, and a k=2 score maxes out at 0.60 < 0.70, so the spaced
	// reading must survive even with perfect plausibility.
	e := newEngine(t, []string{"quinzejours", "quinze jours", "quinze", "jours"})

	text := "quinze jours"
	tokens := textrepair.Tokenize(text)
	if _, _, ok := e.Decide(context.Background(), text, tokens, 0, 2); ok {
		t.Fatal("Decide: ok = true, want no merge (score below k=2 threshold with spaced form valid)")
	}
}

func TestDecide_NoMergeAcrossPunctuation(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []string{"bonjour"})

	text := "bon, jour"
	tokens := textrepair.Tokenize(text)
	if _, _, ok := e.Decide(context.Background(), text, tokens, 0, 4); ok {
		t.Fatal("Decide: ok = true, want no merge across a non-whitespace gap")
	}
}

func TestRepair_IdentityWithoutDictionaryHits(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []string{"rien", "de", "tel"})

	text := "une phrase sans fragments, avec 2 nombres et... du bruit !"
	if got := e.Repair(context.Background(), text, 4); got != text {
		t.Errorf("Repair = %q, want identity %q", got, text)
	}
}

func TestRepair_Idempotent(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []string{"aujourdhui", "on", "y", "va"})

	ctx := context.Background()
	once := e.Repair(ctx, "au jour d hui on y va", 4)
	twice := e.Repair(ctx, once, 4)
	if once != twice {
		t.Errorf("Repair not idempotent: first %q, second %q", once, twice)
	}
}

func TestRepair_PreservesSurroundingText(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []string{"aujourdhui"})

	got := e.Repair(context.Background(), "... au jour d hui, il pleut !", 4)
	want := "... aujourdhui, il pleut !"
	if got != want {
		t.Errorf("Repair = %q, want %q", got, want)
	}
}

func TestScore_LengthBounds(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []string{"ne"})
	ctx := context.Background()

	if s := e.Score(ctx, "ab", 2); s != 0 {
		t.Errorf("Score(2-rune word) = %f, want 0", s)
	}
	if s := e.Score(ctx, strings.Repeat("a", 21), 4); s != 0 {
		t.Errorf("Score(21-rune word) = %f, want 0", s)
	}
	// 4 runes: base 0.50 - 0.05 penalty + 0.10*~1 plausibility.
	if s := e.Score(ctx, "jour", 2); s < 0.50 || s > 0.56 {
		t.Errorf("Score(%q, 2) = %f, want ~0.55", "jour", s)
	}
	// 7 runes, 3 tokens: base 0.55, no penalty.
	if s := e.Score(ctx, "bonjour", 3); s < 0.60 || s > 0.66 {
		t.Errorf("Score(%q, 3) = %f, want ~0.65", "bonjour", s)
	}
}
