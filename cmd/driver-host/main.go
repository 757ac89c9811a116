package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ahrdadan/undetected/internal/api"
	"github.com/ahrdadan/undetected/internal/browser"
	"github.com/ahrdadan/undetected/internal/config"
	"github.com/ahrdadan/undetected/internal/driverhost"
	"github.com/ahrdadan/undetected/internal/logging"
	"github.com/ahrdadan/undetected/internal/notify"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "driver-host",
		Short:         "Keep a stealth browser session alive for other processes",
		Version:       config.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(cfg.LogLevel, os.Stderr)
			if err := config.Finalize(cmd, cfg); err != nil {
				log.Error().Err(err).Msg("Invalid configuration")
				return err
			}
			logging.Setup(cfg.LogLevel, os.Stderr)
			log.Info().Msg(config.VersionString())

			opts := browser.LaunchOptions{
				Headless: cfg.Headless,
				Flags:    browser.ExtendedStealthFlags(),
				Bin:      cfg.BrowserBin,
				Revision: cfg.ChromeRevision,
			}
			host := driverhost.New(browser.NewRodLauncher(), opts, cfg.ConnectionFile)

			if cfg.ServeAddr != "" {
				host.Surface = api.NewServer(cfg.ServeAddr)
			}

			if cfg.NatsURL != "" {
				pub, err := notify.Connect(cfg.NatsURL)
				if err != nil {
					log.Warn().Err(err).Msg("NATS unavailable, connection details will not be published")
				} else {
					defer pub.Close()
					host.Publisher = pub
				}
			}

			if err := host.RunUntilSignal(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("Driver host failed")
				return err
			}
			return nil
		},
	}

	config.BindCommonFlags(cmd, cfg)
	config.BindNotifyFlags(cmd, cfg)
	fs := cmd.Flags()
	fs.StringVar(&cfg.ConnectionFile, "connection-file", cfg.ConnectionFile, "Where to write the connection details")
	fs.StringVar(&cfg.ServeAddr, "serve", cfg.ServeAddr, "Also serve the connection details over HTTP on this address (e.g. 127.0.0.1:8765)")
	return cmd
}
