// Package xdg resolves the XDG base directories used by aportsknife.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the subdirectory created under every base directory.
const AppName = "aportsknife"

// baseDir returns $env, or ~/fallback when the variable is unset or relative.
func baseDir(env string, fallback ...string) (string, error) {
	if dir := os.Getenv(env); dir != "" && filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// ConfigDir returns $XDG_CONFIG_HOME/aportsknife (default ~/.config/aportsknife).
func ConfigDir() (string, error) {
	base, err := baseDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// DataDir returns $XDG_DATA_HOME/aportsknife (default ~/.local/share/aportsknife).
func DataDir() (string, error) {
	base, err := baseDir("XDG_DATA_HOME", ".local", "share")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// StateDir returns $XDG_STATE_HOME/aportsknife (default ~/.local/state/aportsknife).
func StateDir() (string, error) {
	base, err := baseDir("XDG_STATE_HOME", ".local", "state")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// CacheDir returns $XDG_CACHE_HOME/aportsknife (default ~/.cache/aportsknife).
func CacheDir() (string, error) {
	base, err := baseDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
