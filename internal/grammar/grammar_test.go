package grammar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func ltServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/check" {
			t.Errorf("path = %q, want /v2/check", r.URL.Path)
		}
		if r.URL.Query().Get("language") == "" {
			t.Error("missing language parameter")
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestCorrect_AppliesFirstReplacement(t *testing.T) {
	t.Parallel()

	srv := ltServer(t, `{"matches":[
		{"offset":3,"length":5,"replacements":[{"value":"jours"},{"value":"jour"}]}
	]}`)
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Correct(context.Background(), "les journ qui passent")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	want := "les jours qui passent"
	if got != want {
		t.Errorf("Correct = %q, want %q", got, want)
	}
}

func TestCorrect_MultiByteOffsets(t *testing.T) {
	t.Parallel()

	// Offsets are character counts. "éléphant " is 9 characters but 11
	// bytes; a byte interpretation would corrupt the replacement.
	srv := ltServer(t, `{"matches":[
		{"offset":9,"length":4,"replacements":[{"value":"très"}]}
	]}`)
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Correct(context.Background(), "éléphant trés gros")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	want := "éléphant très gros"
	if got != want {
		t.Errorf("Correct = %q, want %q", got, want)
	}
}

func TestCorrect_MultipleMatchesApplyHighOffsetFirst(t *testing.T) {
	t.Parallel()

	// The first replacement lengthens the text; the second match's offset
	// must still land correctly because higher offsets are applied first.
	srv := ltServer(t, `{"matches":[
		{"offset":0,"length":2,"replacements":[{"value":"Nous"}]},
		{"offset":3,"length":2,"replacements":[{"value":"avons"}]}
	]}`)
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Correct(context.Background(), "on av mangé")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	want := "Nous avons mangé"
	if got != want {
		t.Errorf("Correct = %q, want %q", got, want)
	}
}

func TestCorrect_NoMatchesIsIdentity(t *testing.T) {
	t.Parallel()

	srv := ltServer(t, `{"matches":[]}`)
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Correct(context.Background(), "une phrase correcte")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "une phrase correcte" {
		t.Errorf("Correct = %q, want identity", got)
	}
}

func TestCorrect_MatchWithoutReplacementsIsSkipped(t *testing.T) {
	t.Parallel()

	srv := ltServer(t, `{"matches":[{"offset":0,"length":3,"replacements":[]}]}`)
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Correct(context.Background(), "abc def")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "abc def" {
		t.Errorf("Correct = %q, want identity", got)
	}
}

func TestCorrect_ServerErrorSurfaces(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Correct(context.Background(), "du texte"); err == nil {
		t.Fatal("Correct: err = nil, want error after exhausted retries")
	}
}

func TestWaitReady(t *testing.T) {
	t.Parallel()

	srv := ltServer(t, `{"matches":[]}`)
	defer srv.Close()

	c := NewClient(srv.URL, WithLanguage("fr-FR"))
	if err := c.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
}

func TestApplyMatches_OffsetBeyondText(t *testing.T) {
	t.Parallel()

	got := applyMatches("court", []ltMatch{{
		Offset: 40, Length: 5,
		Replacements: []struct {
			Value string `json:"value"`
		}{{Value: "long"}},
	}})
	if got != "courtlong" {
		t.Errorf("applyMatches = %q, want saturated append %q", got, "courtlong")
	}
}
