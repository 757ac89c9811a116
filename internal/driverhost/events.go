package driverhost

import (
	"sync"
)

// HostState is the lifecycle state of a driver host.
type HostState string

const (
	StateStarting HostState = "starting"
	StateRunning  HostState = "running"
	StateStopping HostState = "stopping"
	StateReleased HostState = "released"
)

// Event is a status update pushed to subscribers.
type Event struct {
	State         HostState `json:"state"`
	SessionID     string    `json:"session_id,omitempty"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Message       string    `json:"message,omitempty"`
}

// EventHub fans status events out to subscribers.
type EventHub struct {
	subscribers []chan Event
	closed      bool
	mu          sync.RWMutex
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return &EventHub{}
}

// Subscribe creates a subscription. The channel is closed when the hub closes.
func (h *EventHub) Subscribe() <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers = append(h.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription
func (h *EventHub) Unsubscribe(ch <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subscribers {
		if sub == ch {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(sub)
			break
		}
	}
}

// Emit sends an event to all subscribers, dropping it for slow ones.
func (h *EventHub) Emit(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes all subscriptions
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
	h.closed = true
}
