// Package browsertest provides in-memory browser sessions for tests.
package browsertest

import (
	"context"
	"errors"
	"sync"

	"github.com/ahrdadan/undetected/internal/browser"
)

// Launcher hands out a preconfigured Session, or fails with Err.
type Launcher struct {
	Session *Session
	Err     error

	mu       sync.Mutex
	Launches []browser.LaunchOptions
}

// Launch records opts and returns the configured session.
func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Session, error) {
	l.mu.Lock()
	l.Launches = append(l.Launches, opts)
	l.mu.Unlock()

	if l.Err != nil {
		return nil, l.Err
	}
	if l.Session == nil {
		return nil, errors.New("browsertest: no session configured")
	}
	return l.Session, nil
}

// Session is a scripted browser.Session.
type Session struct {
	Page        browser.PageResult
	Links       []Anchor
	Binary      string
	Conn        browser.ConnectionDescriptor
	NavigateErr error
	InfoErr     error
	AnchorsErr  error

	mu         sync.Mutex
	Visited    []string
	Selectors  []string
	closeCount int
}

// Navigate records the URL.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Visited = append(s.Visited, url)
	return s.NavigateErr
}

// Info returns a copy of Page.
func (s *Session) Info(ctx context.Context) (*browser.PageResult, error) {
	if s.InfoErr != nil {
		return nil, s.InfoErr
	}
	page := s.Page
	return &page, nil
}

// Anchors returns Links regardless of selector.
func (s *Session) Anchors(ctx context.Context, selector string) ([]browser.Anchor, error) {
	s.mu.Lock()
	s.Selectors = append(s.Selectors, selector)
	s.mu.Unlock()

	if s.AnchorsErr != nil {
		return nil, s.AnchorsErr
	}
	anchors := make([]browser.Anchor, 0, len(s.Links))
	for _, a := range s.Links {
		anchors = append(anchors, a)
	}
	return anchors, nil
}

// Descriptor returns a copy of Conn.
func (s *Session) Descriptor(ctx context.Context) (*browser.ConnectionDescriptor, error) {
	conn := s.Conn
	return &conn, nil
}

// BinaryPath returns Binary.
func (s *Session) BinaryPath() string {
	return s.Binary
}

// Close counts calls.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCount++
	return nil
}

// Closed reports how many times Close was called.
func (s *Session) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}

// Anchor is a static link.
type Anchor struct {
	HRef    string
	Content string
	Err     error
}

// Href returns HRef or Err.
func (a Anchor) Href() (string, error) {
	if a.Err != nil {
		return "", a.Err
	}
	return a.HRef, nil
}

// Text returns Content.
func (a Anchor) Text() (string, error) {
	return a.Content, nil
}
