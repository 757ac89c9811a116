package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/ahrdadan/undetected/internal/browser"
)

// ExtractResults reads result links from the session's current page.
// A link that cannot be read is logged and skipped.
func ExtractResults(ctx context.Context, session browser.Session) ([]Result, error) {
	anchors, err := session.Anchors(ctx, ResultSelector)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(anchors)).Msg("Series links found")

	results := make([]Result, 0, MaxResults)
	for i, a := range anchors {
		if len(results) == MaxResults {
			break
		}

		href, err := a.Href()
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Failed to read link")
			continue
		}
		text, err := a.Text()
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Failed to read link")
			continue
		}

		if r, ok := keepResult(href, text); ok {
			results = append(results, r)
			log.Info().Msgf("  %d. %s -> %s", len(results), r.Title, r.URL)
		}
	}

	return results, nil
}

// ExtractFromHTML applies the same selection rules to saved markup.
func ExtractFromHTML(html string) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	results := make([]Result, 0, MaxResults)
	doc.Find(ResultSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if r, ok := keepResult(href, s.Text()); ok {
			results = append(results, r)
		}
		return len(results) < MaxResults
	})

	return results, nil
}

// ExtractTitle returns the document title of saved markup.
func ExtractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
