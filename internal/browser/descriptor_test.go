package browser

import (
	"path/filepath"
	"testing"
)

func TestResolveControlURL(t *testing.T) {
	cases := []struct {
		name  string
		hints EndpointHints
		want  string
	}{
		{"direct", EndpointHints{URL: "ws://127.0.0.1:9222/devtools/browser/abc", AltURL: "ws://alt"}, "ws://127.0.0.1:9222/devtools/browser/abc"},
		{"alternate", EndpointHints{AltURL: "ws://127.0.0.1:9333/devtools/browser/def", Port: 9333}, "ws://127.0.0.1:9333/devtools/browser/def"},
		{"constructed", EndpointHints{Host: "127.0.0.1", Port: 9515}, "http://127.0.0.1:9515"},
		{"default port", EndpointHints{}, "http://localhost:4444"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveControlURL(tc.hints); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDescriptorWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driver_connection.json")
	d := &ConnectionDescriptor{
		CommandExecutorURL: "ws://127.0.0.1:9222/devtools/browser/abc",
		SessionID:          "SESSION",
		Capabilities:       map[string]interface{}{"browserName": "chrome"},
	}

	if err := d.WriteFile(path); err != nil {
		t.Fatalf("Failed to write descriptor: %v", err)
	}

	got, err := ReadDescriptor(path)
	if err != nil {
		t.Fatalf("Failed to read descriptor: %v", err)
	}
	if got.SessionID != "SESSION" || got.Capabilities["browserName"] != "chrome" {
		t.Errorf("Unexpected descriptor: %+v", got)
	}
}
