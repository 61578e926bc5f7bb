// Package grammar corrects transcribed utterances against a
// LanguageTool-compatible HTTP service before fragment repair runs.
// Correction is best-effort: the caller is expected to keep the original
// text when the service is unreachable.
package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/auriga-voice/auriga/internal/resilience"
)

const (
	defaultLanguage = "fr"
	defaultTimeout  = 10 * time.Second

	// readinessAttempts and readinessPause bound the startup probe that
	// waits for the service to begin answering /v2/check.
	readinessAttempts = 10
	readinessPause    = time.Second

	// requestAttempts and requestPause bound per-correction retries for
	// transient failures.
	requestAttempts = 3
	requestPause    = 500 * time.Millisecond
)

// Client calls a LanguageTool /v2/check endpoint. Safe for concurrent use.
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// Option is a functional option for [NewClient].
type Option func(*Client)

// WithLanguage sets the language code sent with each check request, for
// example "fr" or "en-US".
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithHTTPClient overrides the HTTP client, primarily for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client for the service at baseURL, for example
// "http://localhost:8081".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = resilience.NewBreaker(resilience.BreakerConfig{Name: "grammar"})
	return c
}

// ltMatch is one issue found by the service. Offset and Length are in
// characters, not bytes.
type ltMatch struct {
	Offset       int `json:"offset"`
	Length       int `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
}

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

// WaitReady blocks until the service answers a probe request, retrying for
// a bounded number of attempts. Intended for startup, after the service
// process has been launched.
func (c *Client) WaitReady(ctx context.Context) error {
	err := resilience.Retry(ctx, readinessAttempts, readinessPause, func(ctx context.Context) error {
		_, err := c.check(ctx, "Bonjour")
		return err
	})
	if err != nil {
		return fmt.Errorf("grammar: service at %s not ready: %w", c.baseURL, err)
	}
	return nil
}

// Correct returns text with the service's first-choice replacements
// applied. Transient failures are retried; persistent failure trips the
// circuit breaker and surfaces as an error, leaving degradation to the
// caller.
func (c *Client) Correct(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	var matches []ltMatch
	err := c.breaker.Do(func() error {
		return resilience.Retry(ctx, requestAttempts, requestPause, func(ctx context.Context) error {
			var err error
			matches, err = c.check(ctx, text)
			return err
		})
	})
	if err != nil {
		return "", fmt.Errorf("grammar: correct: %w", err)
	}
	return applyMatches(text, matches), nil
}

// check performs one /v2/check request.
func (c *Client) check(ctx context.Context, text string) ([]ltMatch, error) {
	q := url.Values{}
	q.Set("language", c.language)
	q.Set("text", text)
	reqURL := c.baseURL + "/v2/check?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("check returned status %d: %s", resp.StatusCode, body)
	}

	var parsed ltResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Matches, nil
}

// applyMatches rewrites text with the first replacement of each match.
// Matches are applied from the highest offset down so earlier character
// positions stay valid as the string changes length.
func applyMatches(text string, matches []ltMatch) string {
	sorted := make([]ltMatch, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset > sorted[j].Offset })

	corrected := text
	for _, m := range sorted {
		if len(m.Replacements) == 0 {
			continue
		}
		start := byteOffset(corrected, m.Offset)
		end := byteOffset(corrected, m.Offset+m.Length)
		corrected = corrected[:start] + m.Replacements[0].Value + corrected[end:]
	}
	return corrected
}

// byteOffset maps a character index to a byte index in s, saturating at
// len(s).
func byteOffset(s string, chars int) int {
	n := 0
	for i := range s {
		if n == chars {
			return i
		}
		n++
	}
	return len(s)
}
