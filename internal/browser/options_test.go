package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/launcher/flags"
)

func TestLaunchOptionsArgs(t *testing.T) {
	opts := LaunchOptions{Flags: StealthFlags()}
	if got := len(opts.Args()); got != len(baseStealthFlags) {
		t.Fatalf("Expected %d args, got %d", len(baseStealthFlags), got)
	}

	opts.Headless = true
	args := opts.Args()
	if args[len(args)-1] != "--headless" {
		t.Errorf("Expected --headless to be appended, got %v", args)
	}
}

func TestStealthFlagsAreCopies(t *testing.T) {
	f := StealthFlags()
	f[0] = "--changed"
	if baseStealthFlags[0] == "--changed" {
		t.Errorf("StealthFlags must not expose the shared slice")
	}

	if len(ExtendedStealthFlags()) <= len(StealthFlags()) {
		t.Errorf("Expected extended flag set to be larger than the base set")
	}
}

func TestSplitFlag(t *testing.T) {
	cases := []struct {
		arg, name, value string
	}{
		{"--window-size=1366,768", "window-size", "1366,768"},
		{"--no-sandbox", "no-sandbox", ""},
		{"--disable-features=TranslateUI,BlinkGenPropertyTrees", "disable-features", "TranslateUI,BlinkGenPropertyTrees"},
	}

	for _, tc := range cases {
		name, value := splitFlag(tc.arg)
		if name != tc.name || value != tc.value {
			t.Errorf("splitFlag(%q) = %q, %q; want %q, %q", tc.arg, name, value, tc.name, tc.value)
		}
	}
}

func TestNewLauncherAppliesStealthFlags(t *testing.T) {
	l := newLauncher(LaunchOptions{Flags: ExtendedStealthFlags()}, "/opt/chrome/chrome")

	if l.Has(flags.Headless) {
		t.Errorf("Expected headless to be off")
	}
	if l.Has("enable-automation") {
		t.Errorf("Expected enable-automation to be excluded")
	}
	if got := l.Get("window-size"); got != "1366,768" {
		t.Errorf("Expected window-size 1366,768, got %q", got)
	}
	if !l.Has("disable-web-security") {
		t.Errorf("Expected disable-web-security to be set")
	}
	if got := l.Get(flags.Bin); got != "/opt/chrome/chrome" {
		t.Errorf("Expected bin to be set, got %q", got)
	}

	features, _ := l.GetFlags("disable-features")
	want := map[string]bool{"VizDisplayCompositor": false, "TranslateUI": false, "BlinkGenPropertyTrees": false}
	for _, f := range features {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("Expected disable-features to contain %s, got %v", name, features)
		}
	}
}

func TestNewLauncherHeadless(t *testing.T) {
	l := newLauncher(LaunchOptions{Headless: true, Flags: StealthFlags()}, "")
	if !l.Has(flags.Headless) {
		t.Errorf("Expected headless to be on")
	}
}
