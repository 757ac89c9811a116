package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	// Version is the current version of the tooling
	Version = "1"
	// AppName is the application name
	AppName = "Undetected"

	// DefaultQuery is searched when no query argument is given
	DefaultQuery = "Fire Force"
	// MethodTag identifies results produced by a live browser session
	MethodTag = "undetected-rod-go"
)

// Config holds all configuration options shared by the entry points
type Config struct {
	// Browser
	Headless       bool   `yaml:"headless"`
	BrowserBin     string `yaml:"browser_bin"`
	ChromeRevision int    `yaml:"chrome_revision"`
	InstallDeps    bool   `yaml:"install_deps"`

	// Search tester
	SearchHost string `yaml:"search_host"`
	Locale     string `yaml:"locale"`
	DebugDir   string `yaml:"debug_dir"`
	FromFile   string `yaml:"-"`

	// Executable extractor
	ExecutableOut string `yaml:"executable_out"`

	// Driver host
	ConnectionFile string `yaml:"connection_file"`
	ServeAddr      string `yaml:"serve_addr"`

	// Notifications (NATS)
	NatsURL string `yaml:"nats_url"`

	// Logging
	LogLevel string `yaml:"log_level"`

	ConfigFile string `yaml:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Headless:       false,
		SearchHost:     "www.crunchyroll.com",
		Locale:         "fr",
		DebugDir:       ".",
		ExecutableOut:  "./undetected_chromedriver_executable",
		ConnectionFile: "driver_connection.json",
		LogLevel:       "info",
	}
}

// LoadFile overlays values from a YAML file onto cfg. Keys absent from the
// file keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// BindCommonFlags registers the flags every entry point understands.
func BindCommonFlags(cmd *cobra.Command, cfg *Config) {
	fs := cmd.Flags()
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run the browser without a visible window")
	fs.StringVar(&cfg.BrowserBin, "browser-bin", cfg.BrowserBin, "Chromium binary to use (downloaded if empty)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Optional YAML config file")
}

// BindNotifyFlags registers the NATS publishing flag.
func BindNotifyFlags(cmd *cobra.Command, cfg *Config) {
	cmd.Flags().StringVar(&cfg.NatsURL, "nats-url", cfg.NatsURL, "Publish results to this NATS server (disabled if empty)")
}

// Finalize applies the config file, if any, and validates the result.
// Flags explicitly set on the command line win over file values.
func Finalize(cmd *cobra.Command, cfg *Config) error {
	if cfg.ConfigFile != "" {
		fs := cmd.Flags()
		changed := make(map[string]string)
		fs.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})

		if err := LoadFile(cfg.ConfigFile, cfg); err != nil {
			return err
		}

		for name, value := range changed {
			if err := fs.Set(name, value); err != nil {
				return fmt.Errorf("failed to reapply --%s: %w", name, err)
			}
		}
	}
	return cfg.Validate()
}

// Validate normalizes out-of-range values
func (c *Config) Validate() error {
	if c.SearchHost == "" {
		return fmt.Errorf("search host must not be empty")
	}
	if c.Locale == "" {
		c.Locale = "fr"
	}
	if c.DebugDir == "" {
		c.DebugDir = "."
	}
	return nil
}

// ResolveQuery picks the search query from positional arguments.
// The default is used when no argument is given or the first one looks like a flag.
func ResolveQuery(args []string) string {
	if len(args) == 0 || strings.HasPrefix(args[0], "--") {
		return DefaultQuery
	}
	return args[0]
}

// VersionString returns the name and version banner
func VersionString() string {
	return fmt.Sprintf("%s v%s", AppName, Version)
}
