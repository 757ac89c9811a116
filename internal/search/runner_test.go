package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ahrdadan/undetected/internal/browser"
	"github.com/ahrdadan/undetected/internal/browser/browsertest"
)

type recordingPublisher struct {
	subjects []string
	values   []interface{}
}

func (p *recordingPublisher) Publish(subject string, v interface{}) error {
	p.subjects = append(p.subjects, subject)
	p.values = append(p.values, v)
	return nil
}

func newRunner(l browser.Launcher, dir string) *Runner {
	return &Runner{
		Launcher: l,
		Launch:   browser.LaunchOptions{Flags: browser.StealthFlags()},
		Host:     "www.crunchyroll.com",
		Locale:   "fr",
		DebugDir: dir,
		Method:   "test",
	}
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	session := &browsertest.Session{
		Page: browser.PageResult{
			Title: "Recherche - Crunchyroll",
			URL:   "https://www.crunchyroll.com/fr/search?q=Fire%20Force",
			HTML:  `<div class="search-item"><a href="/fr/series/GYQ4MKDZ6">Fire Force</a></div>`,
		},
		Links: []browsertest.Anchor{
			{HRef: "https://www.crunchyroll.com/fr/series/GYQ4MKDZ6", Content: "Fire Force"},
		},
	}
	pub := &recordingPublisher{}
	r := newRunner(&browsertest.Launcher{Session: session}, dir)
	r.Publisher = pub

	summary := r.Run(context.Background(), "Fire Force")

	if !summary.Success || summary.ChallengeDetected || summary.ResultsCount != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.Query != "Fire Force" || summary.Method != "test" {
		t.Errorf("Unexpected query/method: %+v", summary)
	}
	if session.Visited[0] != "https://www.crunchyroll.com/fr/search?q=Fire%20Force" {
		t.Errorf("Unexpected navigation: %v", session.Visited)
	}
	if session.Closed() != 1 {
		t.Errorf("Expected session to be closed once, got %d", session.Closed())
	}

	data, err := os.ReadFile(filepath.Join(dir, "debug_undetected_Fire_Force.html"))
	if err != nil {
		t.Fatalf("Expected debug dump: %v", err)
	}
	if string(data) != session.Page.HTML {
		t.Errorf("Debug dump does not match page markup")
	}

	if len(pub.subjects) != 1 || pub.subjects[0] != ResultsSubject {
		t.Errorf("Expected summary to be published once, got %v", pub.subjects)
	}
}

func TestRunChallenge(t *testing.T) {
	session := &browsertest.Session{
		Page: browser.PageResult{Title: "Un instant…", HTML: "<html>cloudflare</html>"},
		Links: []browsertest.Anchor{
			{HRef: "https://www.crunchyroll.com/fr/series/x", Content: "X"},
		},
	}
	r := newRunner(&browsertest.Launcher{Session: session}, t.TempDir())

	summary := r.Run(context.Background(), "Fire Force")
	if summary.Success || !summary.ChallengeDetected {
		t.Errorf("Expected challenge to fail the run: %+v", summary)
	}
}

func TestRunLaunchFailure(t *testing.T) {
	launcher := &browsertest.Launcher{Err: errors.New("chrome not found")}
	r := newRunner(launcher, t.TempDir())

	summary := r.Run(context.Background(), "Fire Force")
	if summary.Success {
		t.Errorf("Expected failure")
	}
	if summary.Error == "" {
		t.Errorf("Expected error field to be set")
	}
}

func TestRunNavigationFailureClosesSession(t *testing.T) {
	session := &browsertest.Session{NavigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	r := newRunner(&browsertest.Launcher{Session: session}, t.TempDir())

	summary := r.Run(context.Background(), "Fire Force")
	if summary.Success || summary.Error == "" {
		t.Errorf("Expected failure summary, got %+v", summary)
	}
	if session.Closed() != 1 {
		t.Errorf("Expected session to be closed once, got %d", session.Closed())
	}
}

func TestRunHeadlessOptionPassedThrough(t *testing.T) {
	launcher := &browsertest.Launcher{Session: &browsertest.Session{}}
	r := newRunner(launcher, t.TempDir())
	r.Launch.Headless = true

	r.Run(context.Background(), "Fire Force")
	if len(launcher.Launches) != 1 || !launcher.Launches[0].Headless {
		t.Errorf("Expected a headless launch, got %+v", launcher.Launches)
	}
}

func TestRunOffline(t *testing.T) {
	path := filepath.Join(t.TempDir(), DebugFilename("Fire Force"))
	html := `<html><head><title>Recherche</title></head><body><a href="/fr/series/1">Fire Force</a></body></html>`
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		t.Fatal(err)
	}

	summary := RunOffline(path, "Fire Force")
	if !summary.Success || summary.Method != OfflineMethod || summary.Title != "Recherche" {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	missing := RunOffline(filepath.Join(t.TempDir(), "nope.html"), "Fire Force")
	if missing.Success || missing.Error == "" {
		t.Errorf("Expected failure for a missing file")
	}
}
