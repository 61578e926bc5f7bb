// Package dict loads per-language word lists and answers dictionary
// membership queries for the text-repair engine.
//
// Each language is backed by a [LanguageDictionary]: an Aho-Corasick
// automaton over the normalized word set (for exact containment in
// O(len(word))) plus the flat word list (for nearest-neighbour edit
// distance, which the automaton cannot answer). Dictionaries are built once
// by a [Loader] and are read-only afterwards, so they may be shared across
// goroutines without locking.
//
// Word lists are Hunspell .dic files as published by LibreOffice. The
// loader keeps an on-disk cache so the (multi-megabyte) lists are only
// downloaded once per machine.
package dict

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// maxWordListBytes bounds a single word-list download. The largest
// LibreOffice .dic files are a few megabytes.
const maxWordListBytes = 64 << 20

// DefaultSources maps language codes to the LibreOffice Hunspell word lists
// used when no custom sources are configured.
var DefaultSources = map[string]string{
	"fr": "https://raw.githubusercontent.com/LibreOffice/dictionaries/master/fr_FR/fr.dic",
	"en": "https://raw.githubusercontent.com/LibreOffice/dictionaries/master/en/en_US.dic",
}

// Normalize lower-cases s and applies Unicode NFKC normalization. Every
// string compared against a dictionary must pass through Normalize first;
// entries are normalized the same way at load time.
func Normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// LanguageDictionary is the immutable per-language word set. It owns both
// the exact-match automaton and the backing word list. All methods are safe
// for concurrent use once the dictionary is built.
type LanguageDictionary struct {
	lang  string
	trie  *ahocorasick.Trie
	words []string
}

// NewLanguageDictionary builds a dictionary directly from a word slice,
// applying the same normalization and deduplication as the loader. Intended
// for tests and for callers that supply their own word lists.
func NewLanguageDictionary(lang string, words []string) *LanguageDictionary {
	seen := make(map[string]struct{}, len(words))
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		w = Normalize(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		normalized = append(normalized, w)
	}
	trie := ahocorasick.NewTrieBuilder().AddStrings(normalized).Build()
	return &LanguageDictionary{lang: lang, trie: trie, words: normalized}
}

// Lang returns the language code this dictionary was built for.
func (d *LanguageDictionary) Lang() string { return d.lang }

// Len returns the number of entries in the dictionary.
func (d *LanguageDictionary) Len() int { return len(d.words) }

// Index maps language codes to their loaded dictionaries. An Index is
// read-only after Load returns.
type Index map[string]*LanguageDictionary

// Loader fetches, parses, and indexes word lists. The zero value is not
// usable; construct with [NewLoader].
type Loader struct {
	cacheDir string
	client   *http.Client
	sources  map[string]string
}

// LoaderOption is a functional option for [NewLoader].
type LoaderOption func(*Loader)

// WithCacheDir sets the directory where downloaded word lists are cached.
// Default: "./dics".
func WithCacheDir(dir string) LoaderOption {
	return func(l *Loader) { l.cacheDir = dir }
}

// WithHTTPClient overrides the HTTP client used for downloads. Useful in
// tests to point the loader at an httptest server.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// WithSources replaces the language→URL source table. Languages missing
// from the table cause Load to fail.
func WithSources(sources map[string]string) LoaderOption {
	return func(l *Loader) { l.sources = sources }
}

// NewLoader constructs a Loader with the supplied options.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		cacheDir: "./dics",
		client:   &http.Client{Timeout: 60 * time.Second},
		sources:  DefaultSources,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load fetches and indexes the word list for every language in langs,
// loading languages in parallel. The dictionary is a hard prerequisite for
// text repair: any language that cannot be fetched or parsed fails the
// whole load with an error naming the resource, and the caller is expected
// to treat that as fatal.
func (l *Loader) Load(ctx context.Context, langs []string) (Index, error) {
	if len(langs) == 0 {
		return nil, fmt.Errorf("dict: no languages requested")
	}
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("dict: create cache dir %q: %w", l.cacheDir, err)
	}

	var (
		mu  sync.Mutex
		idx = make(Index, len(langs))
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, lang := range langs {
		g.Go(func() error {
			d, err := l.loadLanguage(ctx, lang)
			if err != nil {
				return err
			}
			mu.Lock()
			idx[lang] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}

// loadLanguage resolves one language: cache hit or download, then parse and
// automaton build.
func (l *Loader) loadLanguage(ctx context.Context, lang string) (*LanguageDictionary, error) {
	url, ok := l.sources[lang]
	if !ok {
		return nil, fmt.Errorf("dict: no word list source configured for language %q", lang)
	}

	cachePath := filepath.Join(l.cacheDir, lang+".dic")
	content, err := os.ReadFile(cachePath)
	if err == nil {
		slog.Debug("dict: using cached word list", "lang", lang, "path", cachePath)
	} else {
		slog.Info("dict: downloading word list", "lang", lang, "url", url)
		content, err = l.download(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("dict: download word list for %q from %s: %w", lang, url, err)
		}
		if werr := os.WriteFile(cachePath, content, 0o644); werr != nil {
			return nil, fmt.Errorf("dict: cache word list for %q at %q: %w", lang, cachePath, werr)
		}
	}

	words := parseHunspell(string(content))
	if len(words) == 0 {
		return nil, fmt.Errorf("dict: word list for %q at %s parsed to zero entries", lang, url)
	}

	trie := ahocorasick.NewTrieBuilder().AddStrings(words).Build()

	slog.Info("dict: language loaded", "lang", lang, "entries", len(words))
	return &LanguageDictionary{lang: lang, trie: trie, words: words}, nil
}

// download fetches url and returns the body, failing on any non-200 status.
func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWordListBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// parseHunspell extracts the normalized, deduplicated word set from a
// Hunspell .dic file. The first line is the entry-count header and is
// skipped; affix metadata after '/' on each line is discarded.
func parseHunspell(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	seen := make(map[string]struct{}, len(lines))
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		word, _, _ := strings.Cut(line, "/")
		word = Normalize(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	return words
}
