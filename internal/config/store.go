package config

import (
	"errors"
	"fmt"
	"path/filepath"

	m "github.com/mouse-blink/portyp/internal/model"
)

// ErrConfig reports that the configuration cannot be completed, e.g. the
// package store location cannot be determined.
var ErrConfig = errors.New("configuration error")

// localPackagesSuffix is where Typst keeps `@local` packages inside the data dir.
var localPackagesSuffix = filepath.Join("typst", "packages", "local")

// PackageStore resolves the directory holding locally installed Typst
// packages for the given OS, reading environment variables through getenv:
//   - $XDG_DATA_HOME or $HOME/.local/share on Linux and the BSDs
//   - $HOME/Library/Application Support on macOS
//   - %APPDATA% on Windows
func PackageStore(goos string, getenv func(string) string) (m.Path, error) {
	var base string

	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		base = getenv("XDG_DATA_HOME")
		if base == "" {
			home := getenv("HOME")
			if home == "" {
				return "", fmt.Errorf("%w: neither XDG_DATA_HOME nor HOME is set", ErrConfig)
			}

			base = filepath.Join(home, ".local", "share")
		}
	case "darwin":
		home := getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("%w: HOME is not set", ErrConfig)
		}

		base = filepath.Join(home, "Library", "Application Support")
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("%w: APPDATA is not set", ErrConfig)
		}

		base = appData
	default:
		return "", fmt.Errorf("%w: operating system %q is not supported by Typst", ErrConfig, goos)
	}

	return m.Path(filepath.Join(base, localPackagesSuffix)), nil
}
