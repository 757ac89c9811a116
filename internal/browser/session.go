package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog/log"
)

// RodLauncher launches Chromium through rod and opens a stealth page on it.
type RodLauncher struct{}

// NewRodLauncher creates a launcher backed by rod.
func NewRodLauncher() *RodLauncher {
	return &RodLauncher{}
}

// Launch resolves the browser binary, starts it and connects via CDP.
func (RodLauncher) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	bin, err := ResolveBinary(ctx, opts)
	if err != nil {
		return nil, err
	}

	l := newLauncher(opts, bin)
	log.Debug().Strs("args", opts.Args()).Str("bin", bin).Msg("Launching chrome")

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	log.Info().Str("endpoint", wsURL).Bool("headless", opts.Headless).Msg("Chrome started")

	return &rodSession{
		launcher:  l,
		browser:   b,
		page:      page,
		wsURL:     wsURL,
		binPath:   bin,
		headless:  opts.Headless,
		startedAt: time.Now(),
	}, nil
}

type rodSession struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	wsURL     string
	binPath   string
	headless  bool
	startedAt time.Time

	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) Navigate(ctx context.Context, target string) error {
	page := s.page.Context(ctx)
	if err := page.Navigate(target); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", target, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

func (s *rodSession) Info(ctx context.Context) (*PageResult, error) {
	page := s.page.Context(ctx)

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read page info: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page html: %w", err)
	}

	return &PageResult{
		URL:   info.URL,
		Title: info.Title,
		HTML:  html,
	}, nil
}

func (s *rodSession) Anchors(ctx context.Context, selector string) ([]Anchor, error) {
	elements, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}

	anchors := make([]Anchor, 0, len(elements))
	for _, el := range elements {
		anchors = append(anchors, rodAnchor{el: el})
	}
	return anchors, nil
}

func (s *rodSession) Descriptor(ctx context.Context) (*ConnectionDescriptor, error) {
	hints := EndpointHints{URL: s.wsURL}
	if hints.URL == "" {
		hints = s.fallbackHints()
	}

	version, err := proto.BrowserGetVersion{}.Call(s.browser.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to read browser version: %w", err)
	}

	controlURL := ResolveControlURL(hints)
	caps := map[string]interface{}{
		"browserName":     "chrome",
		"browserVersion":  version.Product,
		"protocolVersion": version.ProtocolVersion,
		"revision":        version.Revision,
		"userAgent":       version.UserAgent,
		"jsVersion":       version.JsVersion,
		"headless":        s.headless,
		"binary":          s.binPath,
		"targetId":        string(s.page.TargetID),
		"startedAt":       s.startedAt.UTC().Format(time.RFC3339),
	}
	if u, err := url.Parse(controlURL); err == nil && u.Host != "" {
		caps["debuggerAddress"] = u.Host
	}

	return &ConnectionDescriptor{
		CommandExecutorURL: controlURL,
		SessionID:          string(s.page.SessionID),
		Capabilities:       caps,
	}, nil
}

// fallbackHints rebuilds endpoint information from the launch flags.
func (s *rodSession) fallbackHints() EndpointHints {
	var hints EndpointHints

	port, _ := strconv.Atoi(s.launcher.Get(flags.RemoteDebuggingPort))
	if port > 0 {
		hints.Port = port
		if resolved, err := launcher.ResolveURL(net.JoinHostPort("127.0.0.1", strconv.Itoa(port))); err == nil {
			hints.AltURL = resolved
		}
	}
	return hints
}

func (s *rodSession) BinaryPath() string {
	return s.binPath
}

// Close releases the browser. Only the first call has any effect.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		if err := s.browser.Close(); err != nil && !isConnectionError(err) {
			log.Warn().Err(err).Msg("Failed to close chrome")
			s.closeErr = err
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
		log.Info().Msg("Chrome stopped")
	})
	return s.closeErr
}

type rodAnchor struct {
	el *rod.Element
}

func (a rodAnchor) Href() (string, error) {
	v, err := a.el.Property("href")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (a rodAnchor) Text() (string, error) {
	return a.el.Text()
}

// isConnectionError reports whether err means the CDP connection is gone.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}
