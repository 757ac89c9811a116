// Package extractor copies the browser binary a session was launched with
// to a stable local path.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/ahrdadan/undetected/internal/browser"
)

// DefaultOutput is where the binary is copied when no destination is given.
const DefaultOutput = "./undetected_chromedriver_executable"

// ErrBinaryNotFound is returned when the session's binary path does not exist.
var ErrBinaryNotFound = errors.New("browser executable not found")

// Extract launches a session to make sure the binary is downloaded, then
// copies it to dest and returns the absolute path of the copy.
func Extract(ctx context.Context, launcher browser.Launcher, opts browser.LaunchOptions, dest string) (string, error) {
	if dest == "" {
		dest = DefaultOutput
	}

	log.Info().Msg("Downloading and preparing the browser executable")
	session, err := launcher.Launch(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	src := session.BinaryPath()
	log.Info().Str("path", src).Msg("Browser executable found")

	if err := session.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close session")
	}

	if src == "" {
		return "", ErrBinaryNotFound
	}
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("%w at %s", ErrBinaryNotFound, src)
	}

	if err := copyFile(src, dest); err != nil {
		return "", err
	}
	log.Info().Str("path", dest).Msg("Executable copied")

	if err := os.Chmod(dest, 0755); err != nil {
		return "", fmt.Errorf("failed to make executable: %w", err)
	}
	log.Info().Msg("Executable permissions set")

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", err
	}
	return abs, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to save file: %w", err)
	}
	return out.Close()
}
