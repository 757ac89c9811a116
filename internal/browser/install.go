package browser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog/log"
)

// ResolveBinary returns the Chromium binary for opts, downloading the
// requested revision when no explicit binary is configured.
func ResolveBinary(ctx context.Context, opts LaunchOptions) (string, error) {
	if opts.Bin != "" {
		return opts.Bin, nil
	}

	downloader := launcher.NewBrowser()
	downloader.Context = ctx
	if opts.Revision > 0 {
		downloader.Revision = opts.Revision
	}

	path, err := downloader.Get()
	if err != nil {
		return "", fmt.Errorf("failed to download chrome: %w", err)
	}

	log.Debug().Str("path", path).Int("revision", downloader.Revision).Msg("Chrome binary ready")
	return path, nil
}

// InstallChromeDependencies installs OS packages required by Chromium.
func InstallChromeDependencies(ctx context.Context) error {
	if runtime.GOOS != "linux" {
		return nil
	}

	if path, _ := exec.LookPath("apt-get"); path != "" {
		if err := runCommand(ctx, path, "update"); err != nil {
			return err
		}
		args := append([]string{"install", "-y", "--no-install-recommends"}, chromeDepsApt...)
		return runCommand(ctx, path, args...)
	}

	if path, _ := exec.LookPath("dnf"); path != "" {
		args := append([]string{"install", "-y"}, chromeDepsDnf...)
		return runCommand(ctx, path, args...)
	}

	return fmt.Errorf("no supported package manager found for Chrome dependencies")
}

func runCommand(ctx context.Context, name string, args ...string) error {
	log.Info().Str("cmd", name).Strs("args", args).Msg("Installing Chrome dependencies")

	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v failed: %w\n%s", name, args, err, out.String())
	}
	return nil
}

var chromeDepsApt = []string{
	"ca-certificates",
	"fonts-liberation",
	"libasound2",
	"libatk-bridge2.0-0",
	"libgbm1",
	"libgtk-3-0",
	"libnss3",
	"libxkbcommon0",
	"libxrandr2",
	"libxshmfence1",
}

var chromeDepsDnf = []string{
	"alsa-lib",
	"atk",
	"gtk3",
	"libxkbcommon",
	"libxshmfence",
	"mesa-libgbm",
	"nss",
}
