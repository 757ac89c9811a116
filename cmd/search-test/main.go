package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ahrdadan/undetected/internal/browser"
	"github.com/ahrdadan/undetected/internal/config"
	"github.com/ahrdadan/undetected/internal/logging"
	"github.com/ahrdadan/undetected/internal/notify"
	"github.com/ahrdadan/undetected/internal/search"
)

// The tester reports failures in its summary and always exits 0.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "search-test [query]",
		Short: "Run one stealth search and print a JSON summary",
		Long: "search-test opens the search page for query in a stealth browser session,\n" +
			"checks for challenge pages and prints the first series links it finds.",
		Version:            config.Version,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := config.ResolveQuery(args)

			logging.Setup(cfg.LogLevel, os.Stderr)
			if err := config.Finalize(cmd, cfg); err != nil {
				return printSummary(cmd, search.FailedSummary(query, config.MethodTag, err))
			}
			logging.Setup(cfg.LogLevel, os.Stderr)

			if cfg.FromFile != "" {
				return printSummary(cmd, search.RunOffline(cfg.FromFile, query))
			}

			runner := &search.Runner{
				Launcher: browser.NewRodLauncher(),
				Launch: browser.LaunchOptions{
					Headless: cfg.Headless,
					Flags:    browser.StealthFlags(),
					Bin:      cfg.BrowserBin,
					Revision: cfg.ChromeRevision,
				},
				Host:     cfg.SearchHost,
				Locale:   cfg.Locale,
				Wait:     search.SettleDelay,
				DebugDir: cfg.DebugDir,
				Method:   config.MethodTag,
			}

			if cfg.NatsURL != "" {
				pub, err := notify.Connect(cfg.NatsURL)
				if err != nil {
					log.Warn().Err(err).Msg("NATS unavailable, results will not be published")
				} else {
					defer pub.Close()
					runner.Publisher = pub
				}
			}

			log.Info().Str("query", query).Msg(config.VersionString())
			return printSummary(cmd, runner.Run(cmd.Context(), query))
		},
	}

	config.BindCommonFlags(cmd, cfg)
	config.BindNotifyFlags(cmd, cfg)
	fs := cmd.Flags()
	fs.StringVar(&cfg.DebugDir, "debug-dir", cfg.DebugDir, "Directory for the page dump")
	fs.StringVar(&cfg.FromFile, "from-file", cfg.FromFile, "Analyse a saved page dump instead of launching a browser")
	fs.StringVar(&cfg.SearchHost, "search-host", cfg.SearchHost, "Host of the search endpoint")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale path segment of the search URL")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *search.Summary) error {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
