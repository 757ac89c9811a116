package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ahrdadan/undetected/internal/browser"
)

// OfflineMethod tags summaries built from a saved page instead of a live session.
const OfflineMethod = "offline-html"

// Publisher receives finished summaries.
type Publisher interface {
	Publish(subject string, v interface{}) error
}

// ResultsSubject is where summaries are published.
const ResultsSubject = "undetected.search.results"

// SettleDelay is how long a page is left to render before it is inspected.
const SettleDelay = 5 * time.Second

// Runner performs one search in a fresh browser session.
type Runner struct {
	Launcher  browser.Launcher
	Launch    browser.LaunchOptions
	Host      string
	Locale    string
	Wait      time.Duration
	DebugDir  string
	Method    string
	Publisher Publisher
}

// Run searches for query and always returns a summary. Failures before the
// page could be inspected yield a summary with Error set.
func (r *Runner) Run(ctx context.Context, query string) *Summary {
	summary, err := r.run(ctx, query)
	if err != nil {
		log.Error().Err(err).Msg("Search failed")
		summary = FailedSummary(query, r.Method, err)
	}
	r.publish(summary)
	return summary
}

func (r *Runner) run(ctx context.Context, query string) (*Summary, error) {
	log.Info().Str("query", query).Msg("Testing stealth browser")
	if r.Launch.Headless {
		log.Info().Msg("Headless mode")
	} else {
		log.Info().Msg("Visible mode")
	}

	session, err := r.Launcher.Launch(ctx, r.Launch)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close session")
		} else {
			log.Info().Msg("Session closed")
		}
	}()
	log.Info().Msg("Session created")

	searchURL := BuildSearchURL(r.Host, r.Locale, query)
	log.Info().Str("url", searchURL).Msg("Navigating")
	if err := session.Navigate(ctx, searchURL); err != nil {
		return nil, err
	}

	if err := sleep(ctx, r.Wait); err != nil {
		return nil, err
	}

	page, err := session.Info(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Str("title", page.Title).Str("url", page.URL).Int("bytes", len(page.HTML)).Msg("Page loaded")

	challenge := DetectChallenge(page.Title, page.HTML)
	log.Info().Bool("challenge", challenge).Bool("potential_results", HasPotentialResults(page.HTML)).Msg("Page inspected")

	if path, err := r.dump(query, page.HTML); err != nil {
		log.Warn().Err(err).Msg("Failed to save debug page")
	} else {
		log.Info().Str("path", path).Msg("Page saved")
	}

	results, err := ExtractResults(ctx, session)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to search links")
		results = nil
	}

	return NewSummary(query, r.Method, page.Title, page.URL, challenge, results), nil
}

// RunOffline summarizes a page previously dumped to path.
func RunOffline(path, query string) *Summary {
	data, err := os.ReadFile(path)
	if err != nil {
		return FailedSummary(query, OfflineMethod, err)
	}
	html := string(data)
	title := ExtractTitle(html)

	results, err := ExtractFromHTML(html)
	if err != nil {
		return FailedSummary(query, OfflineMethod, err)
	}
	return NewSummary(query, OfflineMethod, title, path, DetectChallenge(title, html), results)
}

func (r *Runner) dump(query, html string) (string, error) {
	path := filepath.Join(r.DebugDir, DebugFilename(query))
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Runner) publish(summary *Summary) {
	if r.Publisher == nil {
		return
	}
	if err := r.Publisher.Publish(ResultsSubject, summary); err != nil {
		log.Warn().Err(err).Msg("Failed to publish summary")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
