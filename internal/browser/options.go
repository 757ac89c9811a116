package browser

import (
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// baseStealthFlags are used by one-shot sessions.
var baseStealthFlags = []string{
	"--disable-blink-features=AutomationControlled",
	"--exclude-switches=enable-automation",
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--window-size=1366,768",
}

// extendedStealthFlags are used by long-lived sessions that other processes attach to.
var extendedStealthFlags = []string{
	"--disable-blink-features=AutomationControlled",
	"--exclude-switches=enable-automation",
	"--disable-extensions",
	"--no-sandbox",
	"--disable-plugins-discovery",
	"--disable-features=VizDisplayCompositor",
	"--no-first-run",
	"--no-service-autorun",
	"--no-default-browser-check",
	"--disable-default-apps",
	"--disable-component-update",
	"--disable-web-security",
	"--disable-site-isolation-trials",
	"--disable-features=TranslateUI,BlinkGenPropertyTrees",
	"--disable-ipc-flooding-protection",
	"--memory-pressure-off",
	"--disable-back-forward-cache",
	"--disable-backgrounding-occluded-windows",
	"--disable-renderer-backgrounding",
	"--disable-background-timer-throttling",
	"--disable-gpu-sandbox",
	"--disable-software-rasterizer",
	"--disable-dev-shm-usage",
	"--window-size=1366,768",
	"--disable-infobars",
	"--disable-notifications",
	"--aggressive-cache-discard",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-automation",
	"--disable-save-password-bubble",
	"--disable-single-click-autofill",
}

// listFlags take comma separated values that accumulate instead of replacing.
var listFlags = map[string]bool{
	"disable-features": true,
	"enable-features":  true,
}

// StealthFlags returns the base stealth flag set.
func StealthFlags() []string {
	return append([]string(nil), baseStealthFlags...)
}

// ExtendedStealthFlags returns the extended stealth flag set.
func ExtendedStealthFlags() []string {
	return append([]string(nil), extendedStealthFlags...)
}

// LaunchOptions describes how a session's browser is started.
type LaunchOptions struct {
	Headless bool
	Flags    []string
	Bin      string
	Revision int
}

// Args returns the full flag list the browser is launched with.
func (o LaunchOptions) Args() []string {
	args := append([]string(nil), o.Flags...)
	if o.Headless {
		args = append(args, "--headless")
	}
	return args
}

// splitFlag turns "--name=value" into its name and value.
func splitFlag(arg string) (string, string) {
	arg = strings.TrimLeft(arg, "-")
	name, value, _ := strings.Cut(arg, "=")
	return name, value
}

// newLauncher builds a rod launcher for opts. bin must already be resolved.
func newLauncher(opts LaunchOptions, bin string) *launcher.Launcher {
	l := launcher.New().Headless(opts.Headless)
	if bin != "" {
		l = l.Bin(bin)
	}

	for _, arg := range opts.Flags {
		name, value := splitFlag(arg)
		switch {
		case name == "headless":
			l = l.Headless(true)
		case name == "exclude-switches":
			for _, sw := range strings.Split(value, ",") {
				l = l.Delete(flags.Flag(strings.TrimSpace(sw)))
			}
		case listFlags[name]:
			l = l.Append(flags.Flag(name), strings.Split(value, ",")...)
		case value == "":
			l = l.Set(flags.Flag(name))
		default:
			l = l.Set(flags.Flag(name), value)
		}
	}

	return l
}
