// Package search runs a single search against the streaming site in a
// stealth browser and summarizes what came back.
package search

import (
	"fmt"
	"strings"
)

const (
	// ResultSelector matches links to series pages
	ResultSelector = `a[href*="/series/"]`
	// MaxResults caps the extracted result list
	MaxResults = 5

	challengeTitleMarker = "Un instant"
)

var (
	challengeMarkers = []string{"challenge", "cloudflare"}
	resultMarkers    = []string{"search-item", "series"}
)

// Result is one extracted search hit.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Summary is the outcome of one search run.
type Summary struct {
	Success           bool     `json:"success"`
	ChallengeDetected bool     `json:"challenge_detected"`
	Title             string   `json:"title,omitempty"`
	URL               string   `json:"url,omitempty"`
	ResultsCount      int      `json:"results_count"`
	Results           []Result `json:"results"`
	Method            string   `json:"method"`
	Query             string   `json:"query"`
	Error             string   `json:"error,omitempty"`
}

// NewSummary builds a summary from inspection results; Success is derived.
func NewSummary(query, method, title, url string, challenge bool, results []Result) *Summary {
	if results == nil {
		results = []Result{}
	}
	return &Summary{
		Success:           !challenge && len(results) > 0,
		ChallengeDetected: challenge,
		Title:             title,
		URL:               url,
		ResultsCount:      len(results),
		Results:           results,
		Method:            method,
		Query:             query,
	}
}

// FailedSummary reports a run that never produced an inspectable page.
func FailedSummary(query, method string, err error) *Summary {
	return &Summary{
		Success: false,
		Results: []Result{},
		Method:  method,
		Query:   query,
		Error:   err.Error(),
	}
}

// BuildSearchURL returns the search page URL for query. Only spaces are
// encoded.
func BuildSearchURL(host, locale, query string) string {
	return fmt.Sprintf("https://%s/%s/search?q=%s", host, locale, strings.ReplaceAll(query, " ", "%20"))
}

// DebugFilename returns the file name the raw page is dumped to.
func DebugFilename(query string) string {
	return fmt.Sprintf("debug_undetected_%s.html", strings.ReplaceAll(query, " ", "_"))
}

// DetectChallenge reports whether the page looks like a bot-mitigation interstitial.
func DetectChallenge(title, html string) bool {
	if strings.Contains(title, challengeTitleMarker) {
		return true
	}
	lower := strings.ToLower(html)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// HasPotentialResults reports whether the markup mentions result content.
func HasPotentialResults(html string) bool {
	for _, marker := range resultMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}

// keepResult applies the extraction filter shared by live and offline extraction.
func keepResult(href, text string) (Result, bool) {
	text = strings.TrimSpace(text)
	if href == "" || text == "" {
		return Result{}, false
	}
	return Result{Title: text, URL: href}, true
}
