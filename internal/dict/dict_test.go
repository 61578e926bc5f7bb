package dict_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auriga-voice/auriga/internal/dict"
)

// frDic is a miniature Hunspell .dic file: count header, affix metadata
// after '/', a duplicate, and mixed case.
const frDic = `5
Bonjour/S.
aujourd'hui
bon
jour
bonjour
`

func newDicServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestLoader_ParsesAndDeduplicates(t *testing.T) {
	t.Parallel()

	srv := newDicServer(t, frDic, http.StatusOK)
	defer srv.Close()

	l := dict.NewLoader(
		dict.WithCacheDir(t.TempDir()),
		dict.WithSources(map[string]string{"fr": srv.URL}),
	)
	idx, err := l.Load(context.Background(), []string{"fr"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	d := idx["fr"]
	if d == nil {
		t.Fatal("Load: missing fr dictionary")
	}
	// "Bonjour/S." normalizes to "bonjour"; the later plain "bonjour" is a
	// duplicate, so 4 distinct entries remain.
	if d.Len() != 4 {
		t.Errorf("Len() = %d, want 4", d.Len())
	}
	if !d.ContainsExact("bonjour") {
		t.Error(`ContainsExact("bonjour") = false, want true (header word, lowercased, affix stripped)`)
	}
	if !d.ContainsExact("aujourd'hui") {
		t.Error(`ContainsExact("aujourd'hui") = false, want true`)
	}
}

func TestLoader_UsesCacheOnSecondLoad(t *testing.T) {
	t.Parallel()

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(frDic))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	sources := map[string]string{"fr": srv.URL}

	for range 2 {
		l := dict.NewLoader(dict.WithCacheDir(cacheDir), dict.WithSources(sources))
		if _, err := l.Load(context.Background(), []string{"fr"}); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}

	if requests != 1 {
		t.Errorf("server saw %d requests, want 1 (second load must hit the cache)", requests)
	}
}

func TestLoader_FailsOnMissingResource(t *testing.T) {
	t.Parallel()

	srv := newDicServer(t, "gone", http.StatusNotFound)
	defer srv.Close()

	l := dict.NewLoader(
		dict.WithCacheDir(t.TempDir()),
		dict.WithSources(map[string]string{"fr": srv.URL}),
	)
	if _, err := l.Load(context.Background(), []string{"fr"}); err == nil {
		t.Fatal("Load with 404 source: err = nil, want error (dictionary is a hard prerequisite)")
	}
}

func TestLoader_FailsOnUnknownLanguage(t *testing.T) {
	t.Parallel()

	l := dict.NewLoader(
		dict.WithCacheDir(t.TempDir()),
		dict.WithSources(map[string]string{}),
	)
	if _, err := l.Load(context.Background(), []string{"eo"}); err == nil {
		t.Fatal("Load with unconfigured language: err = nil, want error")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"Bonjour", "bonjour"},
		{"CAFÉ", "café"},
		// NFKC folds the ligature and fullwidth forms.
		{"ﬁn", "fin"},
		{"ａｂｃ", "abc"},
	}
	for _, c := range cases {
		if got := dict.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
