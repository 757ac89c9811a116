package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ahrdadan/undetected/internal/browser/browsertest"
)

func TestExtractResultsCapsAndFilters(t *testing.T) {
	session := &browsertest.Session{
		Links: []browsertest.Anchor{
			{HRef: "", Content: "No href"},
			{HRef: "https://example.test/series/1", Content: "   "},
			{HRef: "https://example.test/series/2", Content: "  Fire Force  "},
			{Err: errors.New("stale element")},
		},
	}
	for i := 3; i < 10; i++ {
		session.Links = append(session.Links, browsertest.Anchor{
			HRef:    fmt.Sprintf("https://example.test/series/%d", i),
			Content: fmt.Sprintf("Series %d", i),
		})
	}

	results, err := ExtractResults(context.Background(), session)
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}

	if len(results) != MaxResults {
		t.Fatalf("Expected %d results, got %d", MaxResults, len(results))
	}
	if results[0].Title != "Fire Force" || results[0].URL != "https://example.test/series/2" {
		t.Errorf("Unexpected first result: %+v", results[0])
	}
	for _, r := range results {
		if r.URL == "" || strings.TrimSpace(r.Title) == "" {
			t.Errorf("Expected empty entries to be excluded, got %+v", r)
		}
	}
	if session.Selectors[0] != ResultSelector {
		t.Errorf("Expected selector %s, got %s", ResultSelector, session.Selectors[0])
	}
}

func TestExtractResultsQueryError(t *testing.T) {
	session := &browsertest.Session{AnchorsErr: errors.New("target closed")}
	if _, err := ExtractResults(context.Background(), session); err == nil {
		t.Errorf("Expected error")
	}
}

func TestExtractFromHTML(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><head><title>Recherche - Crunchyroll</title></head><body>`)
	b.WriteString(`<a href="/fr/watch/123">Episode</a>`)
	b.WriteString(`<a href="/fr/series/empty"></a>`)
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, `<a href="/fr/series/%d/show"><span> Show %d </span></a>`, i, i)
	}
	b.WriteString(`</body></html>`)

	results, err := ExtractFromHTML(b.String())
	if err != nil {
		t.Fatalf("Failed to extract: %v", err)
	}
	if len(results) != MaxResults {
		t.Fatalf("Expected %d results, got %d", MaxResults, len(results))
	}
	if results[0].Title != "Show 0" || results[0].URL != "/fr/series/0/show" {
		t.Errorf("Unexpected first result: %+v", results[0])
	}

	if got := ExtractTitle(b.String()); got != "Recherche - Crunchyroll" {
		t.Errorf("Unexpected title %q", got)
	}
}
