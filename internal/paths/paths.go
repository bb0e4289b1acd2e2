// Package paths resolves the per-user cache locations used by lfz.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CacheDir returns the lfz cache root, e.g. ~/.cache/lfz on Linux or
// ~/Library/Caches/lfz on macOS.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving user cache directory: %w", err)
	}
	return filepath.Join(base, "lfz"), nil
}

// WorkspacesDir returns the directory holding cached west workspaces,
// one subdirectory per project identity.
func WorkspacesDir() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspaces"), nil
}

// CcacheDir returns the compiler cache directory shared by all builds.
func CcacheDir() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ccache"), nil
}

// Anonymize replaces the user's home directory prefix with "~" for display.
func Anonymize(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}
