// Package driverhost keeps a stealth browser session alive and hands its
// connection details to other processes.
package driverhost

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ahrdadan/undetected/internal/browser"
)

const (
	// ConnectionSubject carries the descriptor once the session is ready
	ConnectionSubject = "undetected.driver.connection"
	// ReleasedSubject carries a notice when the session is released
	ReleasedSubject = "undetected.driver.released"
)

// Publisher receives host notifications.
type Publisher interface {
	Publish(subject string, v interface{}) error
}

// Surface exposes a running host to other processes.
type Surface interface {
	Start(h *Host) error
	Shutdown() error
}

// Status is a point-in-time view of the host.
type Status struct {
	State         HostState `json:"state"`
	SessionID     string    `json:"session_id,omitempty"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Host owns one browser session for its whole lifetime.
type Host struct {
	Launcher       browser.Launcher
	Launch         browser.LaunchOptions
	ConnectionFile string
	PollInterval   time.Duration
	Publisher      Publisher
	Surface        Surface

	events *EventHub

	mu         sync.RWMutex
	state      HostState
	descriptor *browser.ConnectionDescriptor
	startedAt  time.Time

	releaseOnce sync.Once
}

// New creates a host that will launch sessions with l.
func New(l browser.Launcher, opts browser.LaunchOptions, connectionFile string) *Host {
	return &Host{
		Launcher:       l,
		Launch:         opts,
		ConnectionFile: connectionFile,
		PollInterval:   time.Second,
		events:         NewEventHub(),
		state:          StateStarting,
	}
}

// RunUntilSignal runs the host until SIGINT or SIGTERM.
func (h *Host) RunUntilSignal(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return h.Run(ctx)
}

// Run launches the session, publishes its descriptor and blocks until ctx is
// done. The session is released exactly once before Run returns.
func (h *Host) Run(ctx context.Context) error {
	log.Info().Msg("Starting stealth driver host")
	if h.Launch.Headless {
		log.Info().Msg("Headless mode enabled")
	} else {
		log.Info().Msg("Visible mode enabled")
	}

	session, err := h.Launcher.Launch(ctx, h.Launch)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	log.Info().Msg("Stealth driver started")

	desc, err := session.Descriptor(ctx)
	if err != nil {
		h.release(session)
		return fmt.Errorf("failed to read connection details: %w", err)
	}
	log.Info().Str("url", desc.CommandExecutorURL).Str("session_id", desc.SessionID).Msg("Driver connection")

	h.mu.Lock()
	h.descriptor = desc
	h.state = StateRunning
	h.startedAt = time.Now()
	h.mu.Unlock()

	// The file is written last: a descriptor on disk always belongs to a live session.
	if h.Surface != nil {
		if err := h.Surface.Start(h); err != nil {
			h.release(session)
			return fmt.Errorf("failed to start connection surface: %w", err)
		}
	}

	if err := desc.WriteFile(h.ConnectionFile); err != nil {
		h.stopSurface()
		h.release(session)
		return err
	}
	log.Info().Str("path", h.ConnectionFile).Msg("Connection details saved")

	h.publish(ConnectionSubject, desc)

	log.Info().Msg("Driver ready, press Ctrl+C to stop")
	h.wait(ctx)

	log.Info().Msg("Stopping driver")
	h.stopping()
	h.stopSurface()
	h.release(session)
	log.Info().Msg("Driver closed cleanly")
	return nil
}

func (h *Host) wait(ctx context.Context) {
	interval := h.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := h.Status()
			h.events.Emit(Event{
				State:         st.State,
				SessionID:     st.SessionID,
				UptimeSeconds: st.UptimeSeconds,
			})
		}
	}
}

func (h *Host) stopSurface() {
	if h.Surface == nil {
		return
	}
	if err := h.Surface.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("Failed to stop connection surface")
	}
}

func (h *Host) stopping() {
	h.mu.Lock()
	h.state = StateStopping
	h.mu.Unlock()

	st := h.Status()
	h.events.Emit(Event{
		State:         st.State,
		SessionID:     st.SessionID,
		UptimeSeconds: st.UptimeSeconds,
		Message:       "shutting down",
	})
}

func (h *Host) release(session browser.Session) {
	h.releaseOnce.Do(func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close session")
		}

		st := h.Status()
		h.mu.Lock()
		h.state = StateReleased
		h.mu.Unlock()

		released := Event{
			State:         StateReleased,
			SessionID:     st.SessionID,
			UptimeSeconds: st.UptimeSeconds,
			Message:       "session released",
		}
		h.events.Emit(released)
		h.events.Close()
		if st.SessionID != "" {
			h.publish(ReleasedSubject, released)
		}
	})
}

func (h *Host) publish(subject string, v interface{}) {
	if h.Publisher == nil {
		return
	}
	if err := h.Publisher.Publish(subject, v); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("Failed to publish")
	}
}

// Connection returns the descriptor once the session is running.
func (h *Host) Connection() (*browser.ConnectionDescriptor, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.descriptor == nil || h.state != StateRunning {
		return nil, false
	}
	return h.descriptor, true
}

// Status returns the current host status.
func (h *Host) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st := Status{State: h.state, StartedAt: h.startedAt}
	if h.descriptor != nil {
		st.SessionID = h.descriptor.SessionID
	}
	if !h.startedAt.IsZero() {
		st.UptimeSeconds = int64(time.Since(h.startedAt).Seconds())
	}
	return st
}

// Subscribe streams status events until the session is released.
func (h *Host) Subscribe() <-chan Event {
	return h.events.Subscribe()
}

// Unsubscribe ends a subscription.
func (h *Host) Unsubscribe(ch <-chan Event) {
	h.events.Unsubscribe(ch)
}
