package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ahrdadan/undetected/internal/browser"
	"github.com/ahrdadan/undetected/internal/config"
	"github.com/ahrdadan/undetected/internal/extractor"
	"github.com/ahrdadan/undetected/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "extract-driver",
		Short:         "Copy the stealth browser executable to a local path",
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

			ctx := cmd.Context()
			if cfg.InstallDeps {
				if err := browser.InstallChromeDependencies(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to install browser dependencies")
					return err
				}
			}

			opts := browser.LaunchOptions{
				Headless: cfg.Headless,
				Flags:    browser.StealthFlags(),
				Bin:      cfg.BrowserBin,
				Revision: cfg.ChromeRevision,
			}
			path, err := extractor.Extract(ctx, browser.NewRodLauncher(), opts, cfg.ExecutableOut)
			if err != nil {
				log.Error().Err(err).Msg("Extraction failed")
				return err
			}

			log.Info().Str("path", path).Msg("Executable ready")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	config.BindCommonFlags(cmd, cfg)
	fs := cmd.Flags()
	fs.StringVarP(&cfg.ExecutableOut, "output", "o", cfg.ExecutableOut, "Destination of the copied executable")
	fs.IntVar(&cfg.ChromeRevision, "revision", cfg.ChromeRevision, "Chromium revision to download (library default if 0)")
	fs.BoolVar(&cfg.InstallDeps, "install-deps", cfg.InstallDeps, "Install the OS packages Chromium needs first")
	return cmd
}
