package browser

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultDriverPort is used when no endpoint information is available at all.
const DefaultDriverPort = 4444

// ConnectionDescriptor lets another process attach to a running session.
// It is only valid while the originating session is alive.
type ConnectionDescriptor struct {
	CommandExecutorURL string                 `json:"command_executor_url"`
	SessionID          string                 `json:"session_id"`
	Capabilities       map[string]interface{} `json:"capabilities"`
}

// WriteFile writes the descriptor as indented JSON.
func (d *ConnectionDescriptor) WriteFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode connection descriptor: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadDescriptor loads a descriptor written by WriteFile.
func ReadDescriptor(path string) (*ConnectionDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d ConnectionDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &d, nil
}

// EndpointHints are the places a control endpoint may be exposed, in the
// order they are tried. Which ones are populated depends on how the browser
// was started, so callers fill in what they have.
type EndpointHints struct {
	URL    string
	AltURL string
	Host   string
	Port   int
}

// ResolveControlURL picks the control endpoint: the direct URL, then the
// alternate URL, then one constructed from host and port.
func ResolveControlURL(h EndpointHints) string {
	if h.URL != "" {
		return h.URL
	}
	if h.AltURL != "" {
		return h.AltURL
	}

	host := h.Host
	if host == "" {
		host = "localhost"
	}
	port := h.Port
	if port <= 0 {
		port = DefaultDriverPort
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}
